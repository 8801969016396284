package verify

import (
	"log/slog"
	"time"

	"veritor-hq/veritor/pkg/pcl/compiler"
)

// Engine runs verifications against compiled policies. An Engine holds
// no per-call state and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a verification engine.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "verify.engine"),
	}
}

// Verify classifies an assignment against a compiled policy.
//
// The call never fails: internal faults and ill-typed values surface as
// a result with classification error, so callers always get exactly one
// terminal classification. The result carries violated rules in
// descending priority order, one clarification prompt per missing
// mandatory variable, and a deterministic explanation.
func (e *Engine) Verify(cp *compiler.CompiledPolicy, assignment Assignment) *Result {
	start := time.Now()
	result := &Result{
		PolicyID:      cp.PolicyID,
		CompilationID: cp.CompilationID,
		Trace:         []State{StateReceived},
	}

	// Gate 1: mandatory variables. Runs before any evaluation so the
	// caller gets a clarification request instead of a half-informed
	// classification.
	result.Trace = append(result.Trace, StateCheckMandatory)
	if missing := MissingMandatory(cp, assignment); len(missing) > 0 {
		result.Classification = ClassificationNeedsClarification
		result.MissingMandatory = missing
		for _, name := range missing {
			result.Suggestions = append(result.Suggestions, missingPrompt(cp.Symbols[name]))
		}
		return e.finish(result, start)
	}

	// Gate 2: fill declared defaults for absent optional variables.
	result.Trace = append(result.Trace, StateApplyDefaults)
	assignment = applyDefaults(cp, assignment)

	if err := validateAssignment(cp, assignment); err != nil {
		return e.fail(result, start, err)
	}

	// Gate 3: global constraints outrank every rule. All constraints are
	// evaluated so the result reports every violation, not just the first.
	result.Trace = append(result.Trace, StateCheckGlobalConstraints)
	var violatedConstraints []ViolatedRule
	for _, group := range [][]*compiler.ConstraintPredicate{cp.DomainConstraints, cp.Constraints} {
		for _, constraint := range group {
			v, err := evalFormula(constraint.Formula, assignment)
			if err != nil {
				return e.fail(result, start, &evalError{SubjectID: constraint.ID, Cause: err})
			}
			if v == triFalse {
				violatedConstraints = append(violatedConstraints, ViolatedRule{
					ID:          constraint.ID,
					Description: constraint.Description,
					Constraint:  true,
				})
			}
		}
	}
	if len(violatedConstraints) > 0 {
		result.Classification = ClassificationInvalid
		result.Violated = violatedConstraints
		for _, v := range violatedConstraints {
			result.Suggestions = append(result.Suggestions, violationSuggestion(v))
		}
		return e.finish(result, start)
	}

	// Gate 4: evaluate every rule. No short-circuiting: a triggered
	// valid rule never hides a lower-priority violation, and the
	// violated list is complete.
	result.Trace = append(result.Trace, StateEvaluateRules)
	var violatedRules []ViolatedRule
	for _, rule := range cp.Rules {
		v, err := evalFormula(rule.Formula, assignment)
		if err != nil {
			return e.fail(result, start, &evalError{SubjectID: rule.ID, Cause: err})
		}
		if v != triTrue {
			continue
		}
		if rule.Conclusion == compiler.ConclusionInvalid {
			// Rules are pre-sorted by descending priority, so appending
			// preserves the required ordering. At equal priority invalid
			// wins over valid by construction: a triggered valid rule is
			// simply not a violation and cannot mask one.
			violatedRules = append(violatedRules, ViolatedRule{
				ID:          rule.ID,
				Description: rule.Description,
				Priority:    rule.Priority,
			})
		}
	}

	if len(violatedRules) > 0 {
		result.Classification = ClassificationInvalid
		result.Violated = violatedRules
		for _, v := range violatedRules {
			result.Suggestions = append(result.Suggestions, violationSuggestion(v))
		}
		return e.finish(result, start)
	}

	// No rule concluded invalid and every constraint held.
	result.Classification = ClassificationValid
	return e.finish(result, start)
}

// VerifyRaw binds a loosely typed assignment and verifies it. Binding
// failures classify as error, same as in-engine type faults.
func (e *Engine) VerifyRaw(cp *compiler.CompiledPolicy, raw map[string]any) *Result {
	assignment, err := BindRaw(cp, raw)
	if err != nil {
		result := &Result{
			PolicyID:      cp.PolicyID,
			CompilationID: cp.CompilationID,
			Trace:         []State{StateReceived},
		}
		return e.fail(result, time.Now(), err)
	}
	return e.Verify(cp, assignment)
}

func (e *Engine) finish(result *Result, start time.Time) *Result {
	result.Explanation = Explain(result)
	e.logger.Info("verification complete",
		"policy_id", result.PolicyID,
		"classification", result.Classification,
		"violated", len(result.Violated),
		"duration", time.Since(start),
	)
	return result
}

// fail marks the result as a system error. Any partially collected
// violations are discarded so error results are never mistaken for a
// policy judgment.
func (e *Engine) fail(result *Result, start time.Time, err error) *Result {
	result.Classification = ClassificationError
	result.Violated = nil
	result.Suggestions = nil
	result.ErrorReason = err.Error()
	result.Explanation = Explain(result)
	e.logger.Error("verification failed",
		"policy_id", result.PolicyID,
		"error", err,
		"duration", time.Since(start),
	)
	return result
}

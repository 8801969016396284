package compiler

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"veritor-hq/veritor/pkg/pcl/ast"
	pclerrors "veritor-hq/veritor/pkg/pcl/errors"
	"veritor-hq/veritor/pkg/pcl/parser"
)

// Compiler turns structured policy definitions into immutable compiled
// policies. A Compiler carries no per-policy state and is safe for
// concurrent use.
type Compiler struct {
	logger *slog.Logger
}

// New creates a new compiler.
func New() *Compiler {
	return &Compiler{
		logger: slog.Default().With("component", "pcl.compiler"),
	}
}

// Compile compiles a policy definition into a CompiledPolicy.
//
// On failure it returns a *pclerrors.ErrorList covering every broken
// rule, constraint, and variable declaration; compilation never stops at
// the first error. A successful compilation is all-or-nothing: if any
// rule or constraint fails, no predicate from this compilation is
// retained.
func (c *Compiler) Compile(policy *ast.Policy) (*CompiledPolicy, error) {
	if policy == nil {
		errs := pclerrors.NewErrorList()
		errs.AddError(pclerrors.KindInvalidDeclaration, "", "policy definition is nil")
		return nil, errs
	}

	start := time.Now()
	b := newBinder()

	// Step 1: bind symbolic variables, validating declarations.
	b.bindSymbols(policy)

	// Step 2: compile every rule, collecting all errors.
	seenRules := make(map[string]bool)
	rules := make([]*RulePredicate, 0, len(policy.Rules))
	for _, rule := range policy.Rules {
		if rule.ID == "" {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, "", "rule is missing an id")
			continue
		}
		if seenRules[rule.ID] {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, rule.ID,
				fmt.Sprintf("duplicate rule id %q", rule.ID))
			continue
		}
		seenRules[rule.ID] = true

		if !rule.Conclusion.IsValid() {
			b.errors.AddError(pclerrors.KindInvalidDeclaration, rule.ID,
				fmt.Sprintf("unknown conclusion %q: expected valid or invalid", rule.Conclusion))
			// The condition is still compiled below so its errors are
			// reported in the same round trip.
		}

		formula := c.compileExpression(b, rule.ID, rule.Condition)
		if formula == nil || !rule.Conclusion.IsValid() {
			continue
		}

		rules = append(rules, &RulePredicate{
			ID:          rule.ID,
			Description: rule.Description,
			Conclusion:  RuleConclusion(rule.Conclusion),
			Priority:    rule.Priority,
			Formula:     formula,
		})
	}

	// Step 3: compile every global constraint.
	constraints := make([]*ConstraintPredicate, 0, len(policy.Constraints))
	for _, constraint := range policy.Constraints {
		formula := c.compileExpression(b, constraint.ID, constraint.Expression)
		if formula == nil {
			continue
		}
		constraints = append(constraints, &ConstraintPredicate{
			ID:          constraint.ID,
			Description: constraint.Description,
			Formula:     formula,
		})
	}

	if b.errors.HasErrors() {
		c.logger.Warn("policy compilation failed",
			"policy_id", policy.ID,
			"errors", b.errors.Count(),
		)
		return nil, b.errors
	}

	// Step 4: derive enum domain constraints.
	var domains []*ConstraintPredicate
	for _, name := range b.order {
		sym := b.symbols[name]
		if sym.Type != ast.VariableTypeEnum {
			continue
		}
		operands := make([]*Formula, 0, len(sym.PossibleValues))
		for _, member := range sym.PossibleValues {
			operands = append(operands, Compare(sym, ast.OperatorEqual, ast.EnumVal(member)))
		}
		domains = append(domains, &ConstraintPredicate{
			ID:          fmt.Sprintf("domain:%s", sym.Name),
			Description: fmt.Sprintf("%s must be one of its declared possible values", sym.Name),
			Formula:     Or(operands...),
		})
	}

	// Rules are pre-sorted by descending priority. The sort is stable so
	// declaration order breaks ties deterministically.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})

	compiled := &CompiledPolicy{
		PolicyID:          policy.ID,
		PolicyVersion:     policy.Version,
		CompilationID:     uuid.NewString(),
		CompiledAt:        time.Now().UTC(),
		Symbols:           b.symbols,
		SymbolOrder:       b.order,
		Rules:             rules,
		Constraints:       constraints,
		DomainConstraints: domains,
	}

	c.logger.Info("policy compiled",
		"policy_id", policy.ID,
		"compilation_id", compiled.CompilationID,
		"variables", len(compiled.SymbolOrder),
		"rules", len(compiled.Rules),
		"constraints", len(compiled.Constraints),
		"duration", time.Since(start),
	)

	return compiled, nil
}

// compileExpression parses and binds one condition expression, recording
// errors against the subject id. Returns nil if anything failed.
func (c *Compiler) compileExpression(b *binder, subjectID, expression string) *Formula {
	if expression == "" {
		b.errors.AddError(pclerrors.KindParse, subjectID, "condition expression is empty")
		return nil
	}

	expr, err := parser.Parse(expression)
	if err != nil {
		if perr, ok := err.(*parser.ParseError); ok {
			b.errors.AddErrorAt(pclerrors.KindParse, subjectID, perr.Reason, perr.Pos)
		} else {
			b.errors.AddError(pclerrors.KindParse, subjectID, err.Error())
		}
		return nil
	}

	return b.bindExpr(expr, subjectID)
}

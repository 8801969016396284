package verify

import (
	"fmt"
	"strings"

	"veritor-hq/veritor/pkg/pcl/compiler"
)

// Explain renders the deterministic human-readable explanation for a
// result. It reads only the result's own fields, so the same result
// always renders the same text and rendering can never change the
// classification.
func Explain(result *Result) string {
	switch result.Classification {
	case ClassificationValid:
		return "The scenario satisfies every policy rule and global constraint."

	case ClassificationInvalid:
		var sb strings.Builder
		sb.WriteString("The scenario violates the following policy requirements:")
		for _, v := range result.Violated {
			sb.WriteString("\n  - ")
			sb.WriteString(v.ID)
			if v.Description != "" {
				sb.WriteString(": ")
				sb.WriteString(v.Description)
			}
		}
		return sb.String()

	case ClassificationNeedsClarification:
		var sb strings.Builder
		sb.WriteString("More information is required before this scenario can be verified. Missing: ")
		sb.WriteString(strings.Join(result.MissingMandatory, ", "))
		return sb.String()

	case ClassificationError:
		return fmt.Sprintf("Verification could not complete: %s", result.ErrorReason)

	default:
		return fmt.Sprintf("unknown classification %q", result.Classification)
	}
}

// missingPrompt builds one actionable clarification prompt for a
// missing mandatory variable.
func missingPrompt(sym *compiler.Symbol) string {
	if sym.Description != "" {
		return fmt.Sprintf("Please provide a value for %s (%s).", sym.Name, sym.Description)
	}
	return fmt.Sprintf("Please provide a value for %s.", sym.Name)
}

// violationSuggestion builds one remediation hint for a violated rule
// or constraint.
func violationSuggestion(v ViolatedRule) string {
	if v.Description != "" {
		return fmt.Sprintf("Review the requirement %q: %s", v.ID, v.Description)
	}
	return fmt.Sprintf("Review the requirement %q.", v.ID)
}

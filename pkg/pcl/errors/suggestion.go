package errors

import (
	"fmt"
	"strings"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// SuggestVariableName suggests possible variable names when an unknown
// variable is referenced. It uses Levenshtein distance to find the
// closest declared name.
func SuggestVariableName(unknown string, declared []string) string {
	if len(declared) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, name := range declared {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("did you mean %q?", bestMatch)
	}

	if len(declared) > 5 {
		return fmt.Sprintf("declared variables include: %s, ...", strings.Join(declared[:5], ", "))
	}
	return fmt.Sprintf("declared variables: %s", strings.Join(declared, ", "))
}

// SuggestOperator suggests valid operators for a variable type.
func SuggestOperator(varType ast.VariableType) string {
	if varType.SupportsOrdering() {
		return "valid operators: ==, !=, <, >, <=, >="
	}
	return "valid operators: ==, !="
}

// SuggestEnumMember suggests the closest declared enum member for a
// literal that is outside the variable's domain.
func SuggestEnumMember(unknown string, members []string) string {
	if len(members) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, member := range members {
		dist := levenshteinDistance(unknown, member)
		if dist < minDistance {
			minDistance = dist
			bestMatch = member
		}
	}

	if minDistance < 5 {
		return fmt.Sprintf("did you mean %q?", bestMatch)
	}
	return fmt.Sprintf("possible values: %s", strings.Join(members, ", "))
}

// levenshteinDistance computes the Levenshtein distance between two strings.
// This is used for finding similar variable/member names for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}

package verify

import "veritor-hq/veritor/pkg/pcl/compiler"

// MissingMandatory returns the mandatory variables that have neither an
// assigned value nor a declared default, in declaration order. It is a
// pure function so callers can pre-flight an assignment without running
// a full verification.
func MissingMandatory(cp *compiler.CompiledPolicy, assignment Assignment) []string {
	var missing []string
	for _, sym := range cp.MandatorySymbols() {
		if _, ok := assignment[sym.Name]; ok {
			continue
		}
		if sym.Default != nil {
			continue
		}
		missing = append(missing, sym.Name)
	}
	return missing
}

// applyDefaults returns a copy of the assignment with every absent
// optional variable that declares a default filled in. The input
// assignment is never mutated.
func applyDefaults(cp *compiler.CompiledPolicy, assignment Assignment) Assignment {
	filled := assignment.Clone()
	for _, name := range cp.SymbolOrder {
		sym := cp.Symbols[name]
		if sym.Default == nil {
			continue
		}
		if _, ok := filled[name]; !ok {
			filled[name] = *sym.Default
		}
	}
	return filled
}

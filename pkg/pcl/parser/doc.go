// Package parser provides lexing and parsing for PCL condition
// expressions, plus the YAML reader for structured policy definitions.
//
// # Condition Grammar
//
// Descending precedence, left-associative where applicable:
//
//	expr       := orExpr
//	orExpr     := andExpr ("OR" andExpr)*
//	andExpr    := notExpr ("AND" notExpr)*
//	notExpr    := "NOT"? atom
//	atom       := "(" expr ")" | comparison
//	comparison := identifier operator literal
//	operator   := "==" | "!=" | "<" | ">" | "<=" | ">="
//	literal    := quotedString | number | "true" | "false" | bareEnumToken
//
// Parsing fails with a *ParseError carrying the byte offset and a reason
// on unbalanced parentheses, unknown tokens, missing operands, and
// unsupported token sequences.
//
// The parser performs no type or variable-existence checking; that is the
// compiler's job, so the same AST shape is reused for any variable set.
//
// # Usage
//
//	expr, err := parser.Parse("advance_notice_days < 14 AND NOT is_emergency")
//	if err != nil {
//	    var perr *parser.ParseError
//	    if errors.As(err, &perr) {
//	        fmt.Println(perr.Pos, perr.Reason)
//	    }
//	}
package parser

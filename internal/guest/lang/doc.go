// Package lang contains the lexer, AST and parser for the guest language, a
// small indentation-structured imperative language. Parse turns source text
// into a *Program or a *SyntaxError carrying the offending line.
package lang

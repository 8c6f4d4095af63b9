// Package query implements the textual query language behind the
// dashboard search box: the token alphabet, the tokenizer, the AST node
// model and the recursive-descent parser.
//
// The language combines free text, field:value filters, @student
// references, comparison operators, boolean combinators and parentheses:
//
//	@aarav AND status:absent
//	attendance:>=80 OR date:yesterday
//	(session:2 OR time:>"10:00") AND NOT status:medical
//
// A query with none of the structured markers is not parsed at all; it
// becomes a single TextSearchNode so that ordinary prose never turns
// into a malformed filter expression.
//
// Tokens and ASTs are built fresh per query and discarded afterwards;
// nothing in this package caches across queries or performs I/O.
package query

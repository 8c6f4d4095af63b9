// Package engine executes parsed queries against a roster context.
//
// The executor dispatches exhaustively on the sealed query.Node kinds,
// combines sub-results with set algebra keyed on entity ids (AND
// intersects, OR unions left-first without duplicates, NOT complements
// against the full student set) and assembles a Result carrying matched
// students, matched sessions, command descriptors and execution
// metadata.
//
// The engine constructs Command descriptors but never invokes their
// Action closures; side effects are the caller's, dispatched through the
// Actions interface.
package engine

// Package search is the public entry point of the query engine: a raw
// query string in, a filtered result out, with silent degradation to
// fuzzy text matching for anything the structured path cannot handle.
package search

import (
	"time"

	"github.com/roach88/rollcall/internal/engine"
	"github.com/roach88/rollcall/internal/fuzzy"
	"github.com/roach88/rollcall/internal/query"
	"github.com/roach88/rollcall/internal/roster"
)

// Engine holds the long-lived pieces of the search box: the registered
// palette commands, the side-effect callback surface and determinism
// hooks. Roster data is supplied per call; the engine never stores it.
type Engine struct {
	registry []engine.Command
	actions  engine.Actions
	ids      engine.IDGenerator
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithActions sets the callback surface commands dispatch into.
func WithActions(a engine.Actions) Option {
	return func(e *Engine) { e.actions = a }
}

// WithIDs sets the command id generator.
func WithIDs(g engine.IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithClock sets the clock used for relative date resolution and
// execution timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a search engine with no registered commands.
func New(opts ...Option) *Engine {
	e := &Engine{
		actions: engine.NopActions{},
		ids:     engine.UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a palette command to the text-search candidate set.
func (e *Engine) Register(cmd engine.Command) {
	e.registry = append(e.registry, cmd)
}

// Search runs one query against a snapshot of the caller's data.
//
// Malformed input never errors out of here: a syntax or field error at
// parse time or execution time silently re-runs the raw string as a
// plain text search, so the worst case for the user is ordinary fuzzy
// matching. The returned error is reserved for contract violations
// (engine.ExecutionError), which must stay loud.
//
// limit > 0 truncates students, sessions and commands independently.
func (e *Engine) Search(raw string, snap roster.Snapshot, limit int) (*engine.Result, error) {
	exec := engine.NewExecutor(
		roster.NewContext(snap),
		engine.WithActions(e.actions),
		engine.WithIDs(e.ids),
		engine.WithRegistry(e.registry),
		engine.WithClock(e.now),
	)

	ast, err := query.ParseAt(raw, e.now())
	if err != nil {
		ast = fallbackAST(raw)
	}

	res, err := exec.Execute(ast)
	if err != nil {
		if engine.IsExecutionError(err) {
			return nil, err
		}
		if res, err = exec.Execute(fallbackAST(raw)); err != nil {
			return nil, err
		}
	}

	truncate(res, limit)
	return res, nil
}

// Palette scores registered commands against free text without touching
// roster data. This is the standalone command-palette variant of the
// fuzzy fallback.
func (e *Engine) Palette(raw string, limit int) []engine.Command {
	candidates := make([]fuzzy.Candidate, len(e.registry))
	for i, cmd := range e.registry {
		candidates[i] = fuzzy.Candidate{
			Label:       cmd.Label,
			Description: cmd.Description,
			Keywords:    cmd.Keywords,
		}
	}
	var out []engine.Command
	for _, m := range fuzzy.Rank(raw, candidates) {
		out = append(out, e.registry[m.Index])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// fallbackAST treats the whole raw string as free text.
func fallbackAST(raw string) *query.AST {
	return &query.AST{
		Root:          &query.TextSearchNode{Query: raw},
		OriginalQuery: raw,
	}
}

func truncate(res *engine.Result, limit int) {
	if limit <= 0 {
		return
	}
	if len(res.Students) > limit {
		res.Students = res.Students[:limit]
	}
	if len(res.Sessions) > limit {
		res.Sessions = res.Sessions[:limit]
	}
	if len(res.Commands) > limit {
		res.Commands = res.Commands[:limit]
	}
}

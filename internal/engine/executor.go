package engine

import (
	"fmt"
	"time"

	"github.com/roach88/rollcall/internal/fuzzy"
	"github.com/roach88/rollcall/internal/query"
	"github.com/roach88/rollcall/internal/roster"
)

// Metadata describes one execution.
type Metadata struct {
	// MatchCount is the number of matched entities (students + sessions).
	MatchCount int

	// ExecutionTimeMs is wall time spent executing, in milliseconds.
	ExecutionTimeMs int64

	// AppliedFilters lists every filter clause of the query as
	// "field:value", walking both sides of every compound.
	AppliedFilters []string
}

// Result is the assembled outcome of one query execution. Students and
// Sessions reference the caller's snapshot data; Commands are fresh
// descriptors whose Action closures the engine never invokes.
type Result struct {
	Students []roster.Student
	Sessions []roster.Session
	Commands []Command
	Metadata Metadata
}

// Executor walks a query AST against one roster context. Construct one
// per query; it is synchronous, single-threaded and performs no I/O.
type Executor struct {
	rc       *roster.Context
	ids      IDGenerator
	actions  Actions
	registry []Command
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithActions sets the side-effect callback surface command closures
// dispatch into.
func WithActions(a Actions) Option {
	return func(e *Executor) { e.actions = a }
}

// WithIDs sets the command id generator.
func WithIDs(g IDGenerator) Option {
	return func(e *Executor) { e.ids = g }
}

// WithRegistry sets the palette commands text search scores against.
func WithRegistry(commands []Command) Option {
	return func(e *Executor) { e.registry = commands }
}

// WithClock sets the wall clock used for execution timing. Tests inject
// a deterministic clock here.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor builds an executor over a roster context.
//
// A nil context is caller misuse, not bad user input, and panics: every
// degradation path below this point assumes a context exists.
func NewExecutor(rc *roster.Context, opts ...Option) *Executor {
	if rc == nil {
		panic("engine: executor requires a roster context")
	}
	e := &Executor{
		rc:      rc,
		ids:     UUIDv7Generator{},
		actions: NopActions{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute evaluates one AST and assembles the result with metadata.
// Errors are field errors (recoverable via fallback) or execution
// errors (caller misuse, not recoverable).
func (e *Executor) Execute(ast *query.AST) (*Result, error) {
	if ast == nil || ast.Root == nil {
		return nil, &ExecutionError{Message: "nil query AST"}
	}

	start := e.now()
	res, err := e.eval(ast.Root)
	if err != nil {
		return nil, err
	}

	for _, f := range query.Filters(ast.Root) {
		res.Metadata.AppliedFilters = append(res.Metadata.AppliedFilters, string(f.Field)+":"+f.Value.String())
	}
	res.Metadata.MatchCount = len(res.Students) + len(res.Sessions)
	res.Metadata.ExecutionTimeMs = e.now().Sub(start).Milliseconds()
	return res, nil
}

// eval dispatches on the node kind. The switch is exhaustive over the
// sealed Node interface; an unknown type means a new node kind was added
// without an executor case, which is a programming error.
func (e *Executor) eval(n query.Node) (*Result, error) {
	switch node := n.(type) {
	case *query.FilterNode:
		return e.evalFilter(node)
	case *query.StudentRefNode:
		return e.evalStudentRef(node)
	case *query.CompoundNode:
		return e.evalCompound(node)
	case *query.TextSearchNode:
		return e.evalTextSearch(node)
	default:
		panic(fmt.Sprintf("engine: unhandled query node %T", n))
	}
}

// evalStudentRef resolves @name to zero or one student, with focus and
// mark-present commands for a resolved student.
func (e *Executor) evalStudentRef(node *query.StudentRefNode) (*Result, error) {
	s, ok := e.rc.FindStudent(node.Name, node.Fuzzy)
	if !ok {
		return &Result{}, nil
	}
	return &Result{
		Students: []roster.Student{s},
		Commands: e.studentCommands(s),
	}, nil
}

// evalCompound combines sub-results with set algebra: AND intersects,
// OR unions (left-first, deduplicated), NOT complements.
//
// NOT always negates against the full student set, never against
// sessions, regardless of which entity type the operand targeted. That
// asymmetry is long-standing observable behavior and is kept as is.
func (e *Executor) evalCompound(node *query.CompoundNode) (*Result, error) {
	left, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}

	if node.Op == query.BoolNot {
		return &Result{
			Students: complementStudents(e.rc.Students(), left.Students),
		}, nil
	}

	right, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Commands: append(append([]Command{}, left.Commands...), right.Commands...),
	}
	switch node.Op {
	case query.BoolAnd:
		res.Students = intersectStudents(left.Students, right.Students)
		res.Sessions = intersectSessions(left.Sessions, right.Sessions)
	case query.BoolOr:
		res.Students = unionStudents(left.Students, right.Students)
		res.Sessions = unionSessions(left.Sessions, right.Sessions)
	}
	return res, nil
}

// evalTextSearch takes the dual path: fuzzy-score registered palette
// commands, and substring-match students by name, email and id. Both
// contribute to the result.
func (e *Executor) evalTextSearch(node *query.TextSearchNode) (*Result, error) {
	res := &Result{
		Students: e.rc.StudentsByText(node.Query),
	}

	if len(e.registry) > 0 {
		candidates := make([]fuzzy.Candidate, len(e.registry))
		for i, cmd := range e.registry {
			candidates[i] = fuzzy.Candidate{
				Label:       cmd.Label,
				Description: cmd.Description,
				Keywords:    cmd.Keywords,
			}
		}
		for _, m := range fuzzy.Rank(node.Query, candidates) {
			res.Commands = append(res.Commands, e.registry[m.Index])
		}
	}
	return res, nil
}

package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/rollcall/internal/roster"
)

// Command is an opaque action descriptor the engine constructs but never
// invokes. The UI layer decides when (and whether) to call Action.
// Description and Keywords feed the fuzzy scorer during text search.
type Command struct {
	ID          string
	Label       string
	Description string
	Keywords    []string
	Action      func()
}

// Actions is the callback surface the engine hands side effects to.
// Command closures call into it; the engine core itself stays free of
// side effects and only returns data.
type Actions interface {
	// FocusStudent asks the UI to scroll to and highlight a student row.
	FocusStudent(roster.Student)

	// MarkStatus asks the UI to record a live status for a student.
	MarkStatus(roster.Student, roster.Status)
}

// NopActions discards every callback. Used when no UI is attached,
// e.g. in the CLI and in tests that only inspect descriptors.
type NopActions struct{}

func (NopActions) FocusStudent(roster.Student)               {}
func (NopActions) MarkStatus(roster.Student, roster.Status)  {}

// IDGenerator produces command ids. Ids only need to be unique per
// render; the scheme is a presentation concern, not query semantics.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 command ids.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests and
// golden trace comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once all ids are consumed. Fail-fast: the test asked for more
// commands than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("engine: FixedGenerator ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SeqGenerator returns "cmd-1", "cmd-2", ... without a declared bound.
// Handy for harness runs where the command count varies per scenario.
type SeqGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *SeqGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("cmd-%d", g.n)
}

// studentCommands builds the action descriptors for one resolved
// student: focus the row, and mark the student present.
func (e *Executor) studentCommands(s roster.Student) []Command {
	student := s // capture by value; the snapshot must not be aliased by closures
	return []Command{
		{
			ID:          e.ids.Generate(),
			Label:       "Focus " + s.Name,
			Description: fmt.Sprintf("Scroll to %s (%s) in the attendance grid", s.Name, s.StudentID),
			Keywords:    []string{"focus", "goto", s.StudentID},
			Action:      func() { e.actions.FocusStudent(student) },
		},
		{
			ID:          e.ids.Generate(),
			Label:       "Mark " + s.Name + " present",
			Description: fmt.Sprintf("Record %s as present for today", s.Name),
			Keywords:    []string{"mark", "present", s.StudentID},
			Action:      func() { e.actions.MarkStatus(student, roster.StatusPresent) },
		},
	}
}

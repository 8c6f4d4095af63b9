package engine

import "github.com/roach88/rollcall/internal/roster"

// Set algebra over partial results. All operations key on entity id,
// preserve left-first ordering and never emit duplicates.

func intersectStudents(a, b []roster.Student) []roster.Student {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s.ID] = struct{}{}
	}
	var out []roster.Student
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		if _, ok := inB[s.ID]; !ok {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func unionStudents(a, b []roster.Student) []roster.Student {
	var out []roster.Student
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// complementStudents returns every student of the full set whose id is
// absent from exclude, in full-set order.
func complementStudents(all, exclude []roster.Student) []roster.Student {
	excluded := make(map[string]struct{}, len(exclude))
	for _, s := range exclude {
		excluded[s.ID] = struct{}{}
	}
	var out []roster.Student
	for _, s := range all {
		if _, ok := excluded[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func intersectSessions(a, b []roster.Session) []roster.Session {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s.ID] = struct{}{}
	}
	var out []roster.Session
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		if _, ok := inB[s.ID]; !ok {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func unionSessions(a, b []roster.Session) []roster.Session {
	var out []roster.Session
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func complementSessions(all, exclude []roster.Session) []roster.Session {
	excluded := make(map[string]struct{}, len(exclude))
	for _, s := range exclude {
		excluded[s.ID] = struct{}{}
	}
	var out []roster.Session
	for _, s := range all {
		if _, ok := excluded[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

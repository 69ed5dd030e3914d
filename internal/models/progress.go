package models

// Progress maps an exercise ID to one completion flag per flat set.
type Progress map[string][]bool

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for id, flags := range p {
		out[id] = append([]bool(nil), flags...)
	}
	return out
}

// Done reports whether set i of exercise id is complete.
func (p Progress) Done(id string, i int) bool {
	flags := p[id]
	return i >= 0 && i < len(flags) && flags[i]
}

// AnyDone reports whether at least one set of exercise id is complete.
func (p Progress) AnyDone(id string) bool {
	for _, done := range p[id] {
		if done {
			return true
		}
	}
	return false
}

// Counts returns completed and total set counts across the given exercises.
func (p Progress) Counts(exercises []Exercise) (done, total int) {
	for _, ex := range exercises {
		for i := range ex.Sets {
			total++
			if p.Done(ex.ID, i) {
				done++
			}
		}
	}
	return done, total
}

// Complete reports whether every set of every exercise is done.
func (p Progress) Complete(exercises []Exercise) bool {
	done, total := p.Counts(exercises)
	return total > 0 && done == total
}

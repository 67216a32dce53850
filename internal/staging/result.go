package staging

// Outcome is the result of staging one input path. Err is nil on success.
type Outcome struct {
	Input string
	Path  string
	Hash  string
	Err   error
}

func (o Outcome) OK() bool { return o.Err == nil }

// AddResult holds one outcome per input path, in input order.
type AddResult struct {
	Outcomes []Outcome
}

func (r *AddResult) Added() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

func (r *AddResult) Failed() int {
	return len(r.Outcomes) - r.Added()
}

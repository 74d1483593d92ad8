package project

// transitions is the fixed adjacency table of legal status changes.
// in_execution -> planned and completed -> in_execution are correction
// paths; settled is terminal.
var transitions = map[Status][]Status{
	StatusPlanned:     {StatusInExecution},
	StatusInExecution: {StatusCompleted, StatusPlanned},
	StatusCompleted:   {StatusSettled, StatusInExecution},
	StatusSettled:     {},
}

// CanTransition reports whether from -> to is a legal status change.
// It is a pure lookup and safe to call redundantly.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// AllowedTransitions returns the legal destinations from the given status.
// The result is empty for the terminal status.
func AllowedTransitions(from Status) []Status {
	out := make([]Status, len(transitions[from]))
	copy(out, transitions[from])

	return out
}

// ValidStatus reports whether s is one of the defined project statuses.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

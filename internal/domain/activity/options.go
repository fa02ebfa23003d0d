package activity

// ListOptions provides filtering options for listing import entries.
type ListOptions struct {
	EventID  string
	Operator string
	Outcome  *Outcome
	Limit    int
	Offset   int
}

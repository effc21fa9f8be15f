package practicum

// Homework is one review record from the status API.
type Homework struct {
	Name   string
	Status string
}

// Snapshot is the checked result of one status poll.
// A nil Homework is the explicit "no new work" signal; it is not an error.
type Snapshot struct {
	CurrentDate int64
	Homework    *Homework
}

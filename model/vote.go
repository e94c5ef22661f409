package model

// RecipientClass partitions decision recipients for vote tallies.
type RecipientClass string

const (
	ClassCouncil RecipientClass = "council"
	ClassProbe   RecipientClass = "probe"
)

// Vote is a single recipient's verdict.
type Vote string

const (
	VoteApprove Vote = "APPROVE"
	VoteDeny    Vote = "DENY"
)

// Tally counts verdicts for one recipient class.
type Tally struct {
	Approve int `json:"approve"`
	Deny    int `json:"deny"`
}

// Add records v.
func (t *Tally) Add(v Vote) {
	switch v {
	case VoteApprove:
		t.Approve++
	case VoteDeny:
		t.Deny++
	}
}

// Total is the number of verdicts counted.
func (t Tally) Total() int { return t.Approve + t.Deny }

package model

// MaxScreenshots is how many screenshots a report keeps. Extra ones are
// dropped on submit.
const MaxScreenshots = 3

// SubmittedReport is a community submission together with its current tally.
type SubmittedReport struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Evidence    string    `json:"evidence,omitempty"`
	Alias       string    `json:"alias"`
	Screenshots []string  `json:"screenshots"`
	Date        string    `json:"date"`
	Votes       VoteTally `json:"votes"`
}

// Score is the report's net vote count.
func (r SubmittedReport) Score() int {
	return r.Votes.Score()
}

// SubmissionRequest is the API request body for submitting a report.
// Type is the dropdown value; QuickType is the quick-select button value used
// when the dropdown is empty.
type SubmissionRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	QuickType   string   `json:"quickType,omitempty"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Alias       string   `json:"alias"`
	Screenshots []string `json:"screenshots"`
}

// RankedReport is a report as listed on the community board.
type RankedReport struct {
	SubmittedReport
	Score          int       `json:"score"`
	UserVote       Direction `json:"userVote,omitempty"`
	Promoted       bool      `json:"promoted"`
	VotesToPromote *int      `json:"votesToPromote,omitempty"`
}

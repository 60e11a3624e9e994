package model

// Direction is a vote direction. The zero value means "no vote".
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection returns the direction named by s, or false if s is not up or down.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), true
	}
	return DirectionNone, false
}

// VoteTally holds the up/down counters of one item.
type VoteTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// Score is up minus down; it may be negative.
func (t VoteTally) Score() int {
	return t.Up - t.Down
}

// Engagement is the total number of votes, used by the controversial sort.
func (t VoteTally) Engagement() int {
	return t.Up + t.Down
}

// VoteAction describes what a cast did to the caller's mark.
type VoteAction string

const (
	VoteActionCast   VoteAction = "cast"
	VoteActionSwitch VoteAction = "switch"
	VoteActionUndo   VoteAction = "undo"
)

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	Direction string `json:"direction"`
}

// VoteResponse is the API response after casting a vote.
type VoteResponse struct {
	Success  bool       `json:"success"`
	Tally    VoteTally  `json:"tally"`
	NewScore int        `json:"newScore"`
	UserVote Direction  `json:"userVote"`
	Action   VoteAction `json:"action"`
}

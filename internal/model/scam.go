package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RecordID is a scam record identifier. Fixtures carry it as either a JSON
// number or a string; it is always handled as a string.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// ScamRecord is one entry of the scams fixture, or a promoted community report
// projected into the same shape.
type ScamRecord struct {
	ID          RecordID `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Date        string   `json:"date"`
	Losses      string   `json:"losses"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Source      string   `json:"source,omitempty"`
	Community   bool     `json:"community,omitempty"`
}

// Record statuses shown on cards.
const (
	StatusActive             = "Active"
	StatusDead               = "Dead"
	StatusUnderInvestigation = "Under Investigation"
	LossesUnknown            = "Unknown"
)

// FeedItem is a record decorated with its vote state for the caller.
type FeedItem struct {
	ScamRecord
	Score    int       `json:"score"`
	UserVote Direction `json:"userVote,omitempty"`
}

// FeedResponse is the API response for the main feed.
type FeedResponse struct {
	Items  []FeedItem `json:"items"`
	Filter string     `json:"filter"`
	Sort   string     `json:"sort"`
}

// SortState is a database table column sort selection.
type SortState struct {
	Column string `json:"column"`
	Dir    string `json:"dir"`
}

// DatabaseResponse is the API response for the database table.
type DatabaseResponse struct {
	Items  []FeedItem `json:"items"`
	Count  int        `json:"count"`
	Filter string     `json:"filter"`
	Search string     `json:"search"`
	Sort   SortState  `json:"sort"`
}

// SortRequest is the API request body for toggling a database column sort.
type SortRequest struct {
	Column string `json:"column"`
}

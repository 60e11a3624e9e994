package model

// Alert is one entry of the alert ticker fixture.
type Alert struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// TickerItem is an alert with its display icon.
type TickerItem struct {
	Severity string `json:"severity"`
	Icon     string `json:"icon"`
	Text     string `json:"text"`
}

// StatsResponse is the API response for the hero statistics.
type StatsResponse struct {
	Scams       int    `json:"scams"`
	Reports     int    `json:"reports"`
	Promoted    int    `json:"promoted"`
	GeneratedAt string `json:"generatedAt"`
}

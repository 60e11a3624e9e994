package model

// Video is one entry of the video vault fixture.
type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Creator      string `json:"creator"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Featured     bool   `json:"featured,omitempty"`
	FeaturedDate string `json:"featuredDate,omitempty"`
	Date         string `json:"date"`
}

// FeaturedResponse is the "stream of the day" pick and up to five previous picks.
type FeaturedResponse struct {
	Current  *Video  `json:"current"`
	Previous []Video `json:"previous"`
}

package service

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Spunkeroo/scam-stream/internal/listing"
	"github.com/Spunkeroo/scam-stream/internal/model"
)

// PreviousFeaturedLimit is how many earlier "stream of the day" picks are listed.
const PreviousFeaturedLimit = 5

type VideoService struct {
	catalog *Catalog
}

func NewVideoService(catalog *Catalog) *VideoService {
	return &VideoService{catalog: catalog}
}

// Vault returns the videos in category ("all" or empty for every category)
// whose title, description or creator contains search, case-insensitively.
func (s *VideoService) Vault(category, search string) []model.Video {
	fold := cases.Fold()
	search = fold.String(strings.TrimSpace(search))

	videos := s.catalog.Videos()
	out := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if category != "" && category != listing.FilterAll && v.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(v.Title), search) &&
			!strings.Contains(fold.String(v.Description), search) &&
			!strings.Contains(fold.String(v.Creator), search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Featured returns the most recent featured video and the picks before it.
func (s *VideoService) Featured() model.FeaturedResponse {
	var featured []model.Video
	for _, v := range s.catalog.Videos() {
		if v.Featured {
			featured = append(featured, v)
		}
	}
	slices.SortStableFunc(featured, func(a, b model.Video) int {
		return listing.ParseDate(featuredOn(b)).Compare(listing.ParseDate(featuredOn(a)))
	})

	resp := model.FeaturedResponse{Previous: []model.Video{}}
	if len(featured) == 0 {
		return resp
	}
	resp.Current = &featured[0]
	rest := featured[1:]
	if len(rest) > PreviousFeaturedLimit {
		rest = rest[:PreviousFeaturedLimit]
	}
	resp.Previous = append(resp.Previous, rest...)
	return resp
}

func featuredOn(v model.Video) string {
	if v.FeaturedDate != "" {
		return v.FeaturedDate
	}
	return v.Date
}

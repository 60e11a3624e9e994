// Package listing is the filter/search/sort view-model shared by the feed and
// the database table. Everything here is pure and safe for concurrent use.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Spunkeroo/scam-stream/internal/model"
)

// FilterAll disables the type filter.
const FilterAll = "all"

// SortKey names a sort order.
type SortKey string

const (
	SortVotes         SortKey = "votes"
	SortName          SortKey = "name"
	SortType          SortKey = "type"
	SortDate          SortKey = "date"
	SortLosses        SortKey = "losses"
	SortStatus        SortKey = "status"
	SortControversial SortKey = "controversial"
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortTop           SortKey = "top"
)

// TableColumns are the sortable columns of the database table.
var TableColumns = map[SortKey]bool{
	SortVotes:  true,
	SortName:   true,
	SortType:   true,
	SortDate:   true,
	SortLosses: true,
	SortStatus: true,
}

// FeedSorts are the sort options of the main feed.
var FeedSorts = map[SortKey]bool{
	SortNewest:        true,
	SortOldest:        true,
	SortTop:           true,
	SortControversial: true,
}

// Query parameterizes View. Score and Engagement look up an item's vote score
// and total vote count; nil functions count as zero.
type Query struct {
	TypeFilter string
	Search     string
	SortKey    SortKey
	SortDir    Direction
	Score      func(id model.RecordID) int
	Engagement func(id model.RecordID) int
}

// View returns the records that pass the type filter and search, in sort
// order. The input slice is not modified and equal keys keep their input order.
func View(records []model.ScamRecord, q Query) []model.ScamRecord {
	fold := cases.Fold()
	search := fold.String(q.Search)

	items := make([]model.ScamRecord, 0, len(records))
	for _, r := range records {
		if q.TypeFilter != "" && q.TypeFilter != FilterAll && r.Type != q.TypeFilter {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(r.Name), search) &&
			!strings.Contains(fold.String(r.Description), search) &&
			!strings.Contains(fold.String(r.Type), search) {
			continue
		}
		items = append(items, r)
	}

	if q.SortKey != "" {
		slices.SortStableFunc(items, comparator(q, fold))
	}
	return items
}

func comparator(q Query, fold cases.Caser) func(a, b model.ScamRecord) int {
	score := q.Score
	if score == nil {
		score = func(model.RecordID) int { return 0 }
	}
	engagement := q.Engagement
	if engagement == nil {
		engagement = func(model.RecordID) int { return 0 }
	}

	directed := func(c int) int {
		if q.SortDir == Asc {
			return c
		}
		return -c
	}

	switch q.SortKey {
	// Feed orders have a fixed direction.
	case SortNewest:
		return func(a, b model.ScamRecord) int { return ParseDate(b.Date).Compare(ParseDate(a.Date)) }
	case SortOldest:
		return func(a, b model.ScamRecord) int { return ParseDate(a.Date).Compare(ParseDate(b.Date)) }
	case SortTop:
		return func(a, b model.ScamRecord) int { return cmp.Compare(score(b.ID), score(a.ID)) }
	case SortControversial:
		return func(a, b model.ScamRecord) int { return cmp.Compare(engagement(b.ID), engagement(a.ID)) }

	// Table columns honour SortDir.
	case SortVotes:
		return func(a, b model.ScamRecord) int { return directed(cmp.Compare(score(a.ID), score(b.ID))) }
	case SortName:
		return func(a, b model.ScamRecord) int {
			return directed(strings.Compare(fold.String(a.Name), fold.String(b.Name)))
		}
	case SortType:
		return func(a, b model.ScamRecord) int { return directed(strings.Compare(a.Type, b.Type)) }
	case SortDate:
		return func(a, b model.ScamRecord) int { return directed(ParseDate(a.Date).Compare(ParseDate(b.Date))) }
	case SortLosses:
		return func(a, b model.ScamRecord) int {
			return directed(cmp.Compare(ParseLosses(a.Losses), ParseLosses(b.Losses)))
		}
	case SortStatus:
		return func(a, b model.ScamRecord) int { return directed(strings.Compare(a.Status, b.Status)) }
	}

	// Unknown keys fall back to the raw date text.
	return func(a, b model.ScamRecord) int { return directed(strings.Compare(a.Date, b.Date)) }
}

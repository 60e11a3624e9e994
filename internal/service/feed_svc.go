package service

import (
	"context"
	"slices"

	"github.com/Spunkeroo/scam-stream/internal/listing"
	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

// DefaultFeedSort is the feed order when none is requested.
const DefaultFeedSort = listing.SortNewest

// FeedService serves the main feed: fixture scams plus promoted community
// reports, scored by the scam ledger.
type FeedService struct {
	catalog *Catalog
	reports *SubmissionRegistry
	ledger  *VoteLedger
}

func NewFeedService(catalog *Catalog, reports *SubmissionRegistry, kv repository.KV) *FeedService {
	return &FeedService{
		catalog: catalog,
		reports: reports,
		ledger:  NewVoteLedger(kv, NamespaceScam),
	}
}

// Records returns the fixture scams followed by the promoted reports.
func (s *FeedService) Records(ctx context.Context) ([]model.ScamRecord, error) {
	promoted, err := s.reports.ListPromoted(ctx, 0)
	if err != nil {
		return nil, err
	}
	return PromoteInto(s.catalog.Scams(), promoted), nil
}

// Feed returns the feed filtered by type and ordered by sort, decorated with
// clientID's votes. An empty sort means newest first.
func (s *FeedService) Feed(ctx context.Context, clientID, filter string, sort listing.SortKey) (*model.FeedResponse, error) {
	if sort == "" {
		sort = DefaultFeedSort
	}
	if !listing.FeedSorts[sort] {
		return nil, ErrInvalidSort
	}
	if filter == "" {
		filter = listing.FilterAll
	}

	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	view := listing.View(records, listing.Query{
		TypeFilter: filter,
		SortKey:    sort,
		Score:      func(id model.RecordID) int { return snap.Score(string(id)) },
		Engagement: func(id model.RecordID) int { return snap.Engagement(string(id)) },
	})
	items, err := decorate(ctx, s.ledger, snap, clientID, view)
	if err != nil {
		return nil, err
	}
	return &model.FeedResponse{Items: items, Filter: filter, Sort: string(sort)}, nil
}

// Vote casts clientID's vote on a record currently in the feed.
func (s *FeedService) Vote(ctx context.Context, clientID string, id model.RecordID, dir model.Direction) (*model.VoteResponse, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	if !containsRecord(records, id) {
		return nil, ErrNotFound
	}
	return castVote(ctx, s.ledger, clientID, string(id), dir)
}

// decorate attaches each record's score and clientID's mark.
func decorate(ctx context.Context, ledger *VoteLedger, snap TallySnapshot, clientID string, records []model.ScamRecord) ([]model.FeedItem, error) {
	items := make([]model.FeedItem, 0, len(records))
	for _, r := range records {
		mark, err := ledger.UserMark(ctx, clientID, string(r.ID))
		if err != nil {
			return nil, err
		}
		items = append(items, model.FeedItem{
			ScamRecord: r,
			Score:      snap.Score(string(r.ID)),
			UserVote:   mark,
		})
	}
	return items, nil
}

func containsRecord(records []model.ScamRecord, id model.RecordID) bool {
	return slices.ContainsFunc(records, func(r model.ScamRecord) bool { return r.ID == id })
}

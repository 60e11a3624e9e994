package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/listing"
	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

const sortStateKey = "db_sort"

// DatabaseQuery selects rows of the database table. An empty Sort uses the
// client's stored column sort; an empty Dir with an explicit Sort means
// descending.
type DatabaseQuery struct {
	Filter string
	Search string
	Sort   listing.SortKey
	Dir    listing.Direction
}

// DatabaseService serves the searchable scam table. It lists fixture scams
// only and keeps its own vote ledger, separate from the feed.
type DatabaseService struct {
	catalog *Catalog
	kv      repository.KV
	ledger  *VoteLedger

	mu sync.Mutex
}

func NewDatabaseService(catalog *Catalog, kv repository.KV) *DatabaseService {
	return &DatabaseService{
		catalog: catalog,
		kv:      kv,
		ledger:  NewVoteLedger(kv, NamespaceDB),
	}
}

// Table returns the matching rows and their count.
func (s *DatabaseService) Table(ctx context.Context, clientID string, q DatabaseQuery) (*model.DatabaseResponse, error) {
	state, err := s.SortState(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if q.Sort != "" {
		if !listing.TableColumns[q.Sort] {
			return nil, ErrInvalidSort
		}
		state = listing.SortState{Key: q.Sort, Dir: listing.ParseDirection(string(q.Dir), listing.Desc)}
	}
	filter := q.Filter
	if filter == "" {
		filter = listing.FilterAll
	}

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	view := listing.View(s.catalog.Scams(), listing.Query{
		TypeFilter: filter,
		Search:     q.Search,
		SortKey:    state.Key,
		SortDir:    state.Dir,
		Score:      func(id model.RecordID) int { return snap.Score(string(id)) },
		Engagement: func(id model.RecordID) int { return snap.Engagement(string(id)) },
	})
	items, err := decorate(ctx, s.ledger, snap, clientID, view)
	if err != nil {
		return nil, err
	}

	return &model.DatabaseResponse{
		Items:  items,
		Count:  len(items),
		Filter: filter,
		Search: q.Search,
		Sort:   model.SortState{Column: string(state.Key), Dir: string(state.Dir)},
	}, nil
}

// SortState returns clientID's stored column sort, or the default.
func (s *DatabaseService) SortState(ctx context.Context, clientID string) (listing.SortState, error) {
	var stored model.SortState
	key := clientScopedKey(clientID, sortStateKey)
	ok, err := repository.GetJSON(ctx, s.kv, key, &stored)
	if errors.Is(err, repository.ErrCorrupt) {
		log.Warn().Err(err).Str("key", sortStateKey).Msg("database: resetting corrupt sort state")
		return listing.DefaultTableSort, nil
	}
	if err != nil {
		return listing.SortState{}, err
	}
	if !ok || !listing.TableColumns[listing.SortKey(stored.Column)] {
		return listing.DefaultTableSort, nil
	}
	return listing.SortState{
		Key: listing.SortKey(stored.Column),
		Dir: listing.ParseDirection(stored.Dir, listing.Desc),
	}, nil
}

// ToggleSort applies a header click on column and stores the result.
func (s *DatabaseService) ToggleSort(ctx context.Context, clientID string, column listing.SortKey) (listing.SortState, error) {
	if !listing.TableColumns[column] {
		return listing.SortState{}, ErrInvalidSort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.SortState(ctx, clientID)
	if err != nil {
		return listing.SortState{}, err
	}
	state = state.Toggle(column)

	stored := model.SortState{Column: string(state.Key), Dir: string(state.Dir)}
	if err := repository.SetJSON(ctx, s.kv, clientScopedKey(clientID, sortStateKey), stored); err != nil {
		return listing.SortState{}, err
	}
	return state, nil
}

// Vote casts clientID's vote on a fixture record.
func (s *DatabaseService) Vote(ctx context.Context, clientID string, id model.RecordID, dir model.Direction) (*model.VoteResponse, error) {
	if !containsRecord(s.catalog.Scams(), id) {
		return nil, ErrNotFound
	}
	return castVote(ctx, s.ledger, clientID, string(id), dir)
}

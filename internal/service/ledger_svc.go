package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

// Ledger namespaces. Each feature keeps its own independent counters.
const (
	NamespaceScam   = "scam"
	NamespaceDB     = "db"
	NamespaceReport = "report"
)

// VoteLedger keeps up/down counters per item and at most one mark per client
// per item. Tallies for a namespace live in one JSON object under
// "<ns>_votes", keyed "<ns>_<id>"; a client's mark lives under
// "uv_<ns>_<id>", prefixed by the client id when there is one.
type VoteLedger struct {
	kv        repository.KV
	namespace string

	// mu serializes read-modify-write of the tallies object. Writers in other
	// processes sharing the store are last-write-wins.
	mu sync.Mutex
}

func NewVoteLedger(kv repository.KV, namespace string) *VoteLedger {
	return &VoteLedger{kv: kv, namespace: namespace}
}

// TalliesKey is the storage key holding every tally of the namespace.
func (l *VoteLedger) TalliesKey() string {
	return l.namespace + "_votes"
}

// MarkKey is the storage key holding clientID's mark on item id.
func (l *VoteLedger) MarkKey(clientID, id string) string {
	return clientScopedKey(clientID, "uv_"+l.namespace+"_"+id)
}

func (l *VoteLedger) itemKey(id string) string {
	return l.namespace + "_" + id
}

// TallySnapshot is a point-in-time copy of a namespace's tallies, used to
// score a whole listing with one storage read.
type TallySnapshot struct {
	namespace string
	tallies   map[string]model.VoteTally
}

func (s TallySnapshot) Tally(id string) model.VoteTally {
	return s.tallies[s.namespace+"_"+id]
}

func (s TallySnapshot) Score(id string) int {
	return s.Tally(id).Score()
}

func (s TallySnapshot) Engagement(id string) int {
	return s.Tally(id).Engagement()
}

// Snapshot reads all tallies of the namespace.
func (l *VoteLedger) Snapshot(ctx context.Context) (TallySnapshot, error) {
	tallies, err := l.loadTallies(ctx)
	if err != nil {
		return TallySnapshot{}, err
	}
	return TallySnapshot{namespace: l.namespace, tallies: tallies}, nil
}

// Tally returns the counters of item id.
func (l *VoteLedger) Tally(ctx context.Context, id string) (model.VoteTally, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return model.VoteTally{}, err
	}
	return snap.Tally(id), nil
}

// Score returns up minus down for item id.
func (l *VoteLedger) Score(ctx context.Context, id string) (int, error) {
	t, err := l.Tally(ctx, id)
	return t.Score(), err
}

// UserMark returns clientID's current vote on item id. A stored value other
// than "up" or "down" reads as no vote.
func (l *VoteLedger) UserMark(ctx context.Context, clientID, id string) (model.Direction, error) {
	raw, ok, err := l.kv.Get(ctx, l.MarkKey(clientID, id))
	if err != nil {
		return model.DirectionNone, fmt.Errorf("get mark: %w", err)
	}
	if !ok {
		return model.DirectionNone, nil
	}
	dir, valid := model.ParseDirection(raw)
	if !valid {
		log.Warn().Str("namespace", l.namespace).Str("item", id).Msg("ledger: ignoring malformed vote mark")
		return model.DirectionNone, nil
	}
	return dir, nil
}

// Cast applies clientID's vote on item id and returns the new tally.
//
// Voting the same direction as the current mark undoes it. Voting the other
// direction moves the client's single vote from one bucket to the other.
// Counters never drop below zero.
func (l *VoteLedger) Cast(ctx context.Context, clientID, id string, dir model.Direction) (model.VoteTally, model.VoteAction, error) {
	if _, ok := model.ParseDirection(string(dir)); !ok {
		return model.VoteTally{}, "", ErrInvalidDirection
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tallies, err := l.loadTallies(ctx)
	if err != nil {
		return model.VoteTally{}, "", err
	}
	current, err := l.UserMark(ctx, clientID, id)
	if err != nil {
		return model.VoteTally{}, "", err
	}

	key := l.itemKey(id)
	prev, hadPrev := tallies[key]
	t := prev
	var action model.VoteAction

	if current == dir {
		t = bump(t, dir, -1)
		action = model.VoteActionUndo
	} else {
		action = model.VoteActionCast
		if current != model.DirectionNone {
			t = bump(t, current, -1)
			action = model.VoteActionSwitch
		}
		t = bump(t, dir, 1)
	}
	tallies[key] = t

	if err := repository.SetJSON(ctx, l.kv, l.TalliesKey(), tallies); err != nil {
		return model.VoteTally{}, "", err
	}

	markKey := l.MarkKey(clientID, id)
	if action == model.VoteActionUndo {
		err = l.kv.Remove(ctx, markKey)
	} else {
		err = l.kv.Set(ctx, markKey, string(dir))
	}
	if err != nil {
		// The mark did not change; put the tally back to match it.
		if hadPrev {
			tallies[key] = prev
		} else {
			delete(tallies, key)
		}
		if rbErr := repository.SetJSON(ctx, l.kv, l.TalliesKey(), tallies); rbErr != nil {
			log.Error().Err(rbErr).Str("namespace", l.namespace).Str("item", id).Msg("ledger: tally rollback failed")
		}
		return model.VoteTally{}, "", fmt.Errorf("persist mark: %w", err)
	}

	return t, action, nil
}

// loadTallies reads the namespace's tallies. A corrupt value is logged and
// treated as empty; the next Cast overwrites it.
func (l *VoteLedger) loadTallies(ctx context.Context) (map[string]model.VoteTally, error) {
	tallies := make(map[string]model.VoteTally)
	_, err := repository.GetJSON(ctx, l.kv, l.TalliesKey(), &tallies)
	if errors.Is(err, repository.ErrCorrupt) {
		log.Warn().Err(err).Str("key", l.TalliesKey()).Msg("ledger: resetting corrupt tallies")
		return make(map[string]model.VoteTally), nil
	}
	if err != nil {
		return nil, err
	}
	if tallies == nil {
		return make(map[string]model.VoteTally), nil
	}
	for k, t := range tallies {
		tallies[k] = model.VoteTally{Up: max(t.Up, 0), Down: max(t.Down, 0)}
	}
	return tallies, nil
}

func bump(t model.VoteTally, dir model.Direction, delta int) model.VoteTally {
	switch dir {
	case model.DirectionUp:
		t.Up = max(t.Up+delta, 0)
	case model.DirectionDown:
		t.Down = max(t.Down+delta, 0)
	}
	return t
}

// clientScopedKey prefixes key with the client id. An empty client id gives
// the bare key, which is the single-user layout.
func clientScopedKey(clientID, key string) string {
	if clientID == "" {
		return key
	}
	return clientID + ":" + key
}

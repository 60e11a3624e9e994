package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

func TestLedger_CastUndoSwitch(t *testing.T) {
	ctx := context.Background()
	l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceScam)

	tests := []struct {
		dir        model.Direction
		wantTally  model.VoteTally
		wantAction model.VoteAction
		wantMark   model.Direction
	}{
		{model.DirectionUp, model.VoteTally{Up: 1}, model.VoteActionCast, model.DirectionUp},
		{model.DirectionDown, model.VoteTally{Down: 1}, model.VoteActionSwitch, model.DirectionDown},
		{model.DirectionDown, model.VoteTally{}, model.VoteActionUndo, model.DirectionNone},
		{model.DirectionDown, model.VoteTally{Down: 1}, model.VoteActionCast, model.DirectionDown},
		{model.DirectionUp, model.VoteTally{Up: 1}, model.VoteActionSwitch, model.DirectionUp},
		{model.DirectionUp, model.VoteTally{}, model.VoteActionUndo, model.DirectionNone},
	}

	for i, tt := range tests {
		tally, action, err := l.Cast(ctx, "client-a", "7", tt.dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, tt.wantTally, tally, "step %d tally", i)
		assert.Equal(t, tt.wantAction, action, "step %d action", i)

		mark, err := l.UserMark(ctx, "client-a", "7")
		require.NoError(t, err)
		assert.Equal(t, tt.wantMark, mark, "step %d mark", i)
	}
}

func TestLedger_UpThenDownNetsMinusTwo(t *testing.T) {
	ctx := context.Background()
	l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceScam)

	_, _, err := l.Cast(ctx, "", "1", model.DirectionUp)
	require.NoError(t, err)
	before, err := l.Score(ctx, "1")
	require.NoError(t, err)

	_, _, err = l.Cast(ctx, "", "1", model.DirectionDown)
	require.NoError(t, err)
	after, err := l.Score(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, -2, after-before)
}

func TestLedger_ClientsAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceReport)

	for _, c := range []string{"a", "b", "c"} {
		_, _, err := l.Cast(ctx, c, "42", model.DirectionUp)
		require.NoError(t, err)
	}
	_, _, err := l.Cast(ctx, "d", "42", model.DirectionDown)
	require.NoError(t, err)

	tally, err := l.Tally(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, model.VoteTally{Up: 3, Down: 1}, tally)
	assert.Equal(t, 2, tally.Score())

	mark, err := l.UserMark(ctx, "e", "42")
	require.NoError(t, err)
	assert.Equal(t, model.DirectionNone, mark)
}

func TestLedger_NamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryRepo()
	scam := NewVoteLedger(kv, NamespaceScam)
	db := NewVoteLedger(kv, NamespaceDB)

	_, _, err := scam.Cast(ctx, "a", "1", model.DirectionUp)
	require.NoError(t, err)

	score, err := db.Score(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, score)

	mark, err := db.UserMark(ctx, "a", "1")
	require.NoError(t, err)
	assert.Equal(t, model.DirectionNone, mark)
}

func TestLedger_StorageLayout(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryRepo()
	l := NewVoteLedger(kv, NamespaceScam)

	_, _, err := l.Cast(ctx, "", "9", model.DirectionUp)
	require.NoError(t, err)

	raw, ok, err := kv.Get(ctx, "scam_votes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"scam_9":{"up":1,"down":0}}`, raw)

	mark, ok, err := kv.Get(ctx, "uv_scam_9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "up", mark)

	assert.Equal(t, "abc:uv_db_3", NewVoteLedger(kv, NamespaceDB).MarkKey("abc", "3"))
}

func TestLedger_CorruptTalliesResetToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryRepo()
	require.NoError(t, kv.Set(ctx, "scam_votes", "{not json"))
	l := NewVoteLedger(kv, NamespaceScam)

	score, err := l.Score(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, score)

	tally, _, err := l.Cast(ctx, "", "1", model.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteTally{Up: 1}, tally)

	raw, _, err := kv.Get(ctx, "scam_votes")
	require.NoError(t, err)
	assert.JSONEq(t, `{"scam_1":{"up":1,"down":0}}`, raw)
}

func TestLedger_MalformedMarkReadsAsNone(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryRepo()
	require.NoError(t, kv.Set(ctx, "uv_scam_1", "sideways"))
	l := NewVoteLedger(kv, NamespaceScam)

	mark, err := l.UserMark(ctx, "", "1")
	require.NoError(t, err)
	assert.Equal(t, model.DirectionNone, mark)

	_, action, err := l.Cast(ctx, "", "1", model.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteActionCast, action)
}

func TestLedger_SwitchNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryRepo()
	// A mark without a matching count, e.g. after the tallies were reset.
	require.NoError(t, kv.Set(ctx, "uv_scam_1", "up"))
	l := NewVoteLedger(kv, NamespaceScam)

	tally, action, err := l.Cast(ctx, "", "1", model.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, model.VoteActionSwitch, action)
	assert.Equal(t, model.VoteTally{Up: 0, Down: 1}, tally)
}

func TestLedger_RejectsInvalidDirection(t *testing.T) {
	l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceScam)
	_, _, err := l.Cast(context.Background(), "", "1", model.Direction("sideways"))
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestLedger_SingleClientSequenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("final tally reflects only the final mark", prop.ForAll(
		func(ups []bool) bool {
			ctx := context.Background()
			l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceScam)

			mark := model.DirectionNone
			for _, up := range ups {
				dir := model.DirectionDown
				if up {
					dir = model.DirectionUp
				}
				tally, _, err := l.Cast(ctx, "c", "1", dir)
				if err != nil || tally.Up < 0 || tally.Down < 0 {
					return false
				}
				if mark == dir {
					mark = model.DirectionNone
				} else {
					mark = dir
				}
			}

			want := model.VoteTally{}
			switch mark {
			case model.DirectionUp:
				want.Up = 1
			case model.DirectionDown:
				want.Down = 1
			}
			got, err := l.Tally(ctx, "1")
			stored, _ := l.UserMark(ctx, "c", "1")
			return err == nil && got == want && stored == mark
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestLedger_ManyClientsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("tally counts each client's current mark once", prop.ForAll(
		func(clients []int, ups []bool) bool {
			ctx := context.Background()
			l := NewVoteLedger(repository.NewMemoryRepo(), NamespaceDB)
			names := []string{"a", "b", "c", "d"}
			marks := map[string]model.Direction{}

			for i := 0; i < len(clients) && i < len(ups); i++ {
				client := names[clients[i]]
				dir := model.DirectionDown
				if ups[i] {
					dir = model.DirectionUp
				}
				if _, _, err := l.Cast(ctx, client, "x", dir); err != nil {
					return false
				}
				if marks[client] == dir {
					marks[client] = model.DirectionNone
				} else {
					marks[client] = dir
				}
			}

			want := model.VoteTally{}
			for _, m := range marks {
				switch m {
				case model.DirectionUp:
					want.Up++
				case model.DirectionDown:
					want.Down++
				}
			}
			got, err := l.Tally(ctx, "x")
			return err == nil && got == want
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// failingMarkKV fails the next `failures` writes to vote mark keys.
type failingMarkKV struct {
	*repository.MemoryRepo
	failures int
}

func (f *failingMarkKV) Set(ctx context.Context, key, value string) error {
	if strings.Contains(key, "uv_") && f.failures > 0 {
		f.failures--
		return errors.New("transient")
	}
	return f.MemoryRepo.Set(ctx, key, value)
}

func (f *failingMarkKV) Remove(ctx context.Context, key string) error {
	if strings.Contains(key, "uv_") && f.failures > 0 {
		f.failures--
		return errors.New("transient")
	}
	return f.MemoryRepo.Remove(ctx, key)
}

func TestLedger_FailedMarkWriteLeavesTallyUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &failingMarkKV{MemoryRepo: repository.NewMemoryRepo(), failures: 1}
	l := NewVoteLedger(kv, NamespaceScam)

	_, _, err := l.Cast(ctx, "c", "1", model.DirectionUp)
	require.Error(t, err)

	tally, err := l.Tally(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.VoteTally{}, tally)

	// The retry counts the client once.
	tally, action, err := l.Cast(ctx, "c", "1", model.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteActionCast, action)
	assert.Equal(t, model.VoteTally{Up: 1}, tally)
}

func TestLedger_FailedUndoKeepsVote(t *testing.T) {
	ctx := context.Background()
	kv := &failingMarkKV{MemoryRepo: repository.NewMemoryRepo()}
	l := NewVoteLedger(kv, NamespaceScam)

	_, _, err := l.Cast(ctx, "c", "1", model.DirectionUp)
	require.NoError(t, err)

	kv.failures = 1
	_, _, err = l.Cast(ctx, "c", "1", model.DirectionUp)
	require.Error(t, err)

	tally, err := l.Tally(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.VoteTally{Up: 1}, tally)
	mark, err := l.UserMark(ctx, "c", "1")
	require.NoError(t, err)
	assert.Equal(t, model.DirectionUp, mark)
}

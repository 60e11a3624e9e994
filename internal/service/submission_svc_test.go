package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

func newTestRegistry(t *testing.T) (*SubmissionRegistry, *repository.MemoryRepo) {
	t.Helper()
	kv := repository.NewMemoryRepo()
	r := NewSubmissionRegistry(kv, 0)
	fixed := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	return r, kv
}

func TestSubmit_AppliesDefaults(t *testing.T) {
	r, _ := newTestRegistry(t)

	rep, err := r.Submit(context.Background(), model.SubmissionRequest{
		Name:        "  Fake Airdrop  ",
		QuickType:   "Crypto",
		Description: "   ",
		Screenshots: []string{"data:image/png;base64,a", "data:image/png;base64,b", "data:image/png;base64,c", "data:image/png;base64,d"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Fake Airdrop", rep.Name)
	assert.Equal(t, "Crypto", rep.Type)
	assert.Equal(t, DefaultDescription, rep.Description)
	assert.Equal(t, DefaultAlias, rep.Alias)
	assert.Equal(t, "2024-03-09", rep.Date)
	assert.Len(t, rep.Screenshots, 3)
	assert.Equal(t, "data:image/png;base64,c", rep.Screenshots[2])
	assert.Equal(t, model.VoteTally{}, rep.Votes)
}

func TestSubmit_DropdownTypeWins(t *testing.T) {
	r, _ := newTestRegistry(t)
	rep, err := r.Submit(context.Background(), model.SubmissionRequest{Name: "x", Type: "Phishing", QuickType: "Crypto"})
	require.NoError(t, err)
	assert.Equal(t, "Phishing", rep.Type)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.SubmissionRequest
		want error
	}{
		{"empty name", model.SubmissionRequest{Name: "", Type: "Crypto"}, ErrMissingName},
		{"blank name", model.SubmissionRequest{Name: "   ", Type: "Crypto"}, ErrMissingName},
		{"no type", model.SubmissionRequest{Name: "x"}, ErrMissingType},
		{"blank quick type", model.SubmissionRequest{Name: "x", QuickType: " "}, ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, kv := newTestRegistry(t)
			_, err := r.Submit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, kv.Len(), "nothing stored on rejection")
		})
	}
}

func TestSubmit_NewestFirstWithUniqueIDs(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	first, err := r.Submit(ctx, model.SubmissionRequest{Name: "first", Type: "t"})
	require.NoError(t, err)
	second, err := r.Submit(ctx, model.SubmissionRequest{Name: "second", Type: "t"})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "second", reports[0].Name)
	assert.Equal(t, "first", reports[1].Name)
}

func TestSubmit_PersistsWithoutTallies(t *testing.T) {
	r, kv := newTestRegistry(t)
	ctx := context.Background()

	rep, err := r.Submit(ctx, model.SubmissionRequest{Name: "x", Type: "t"})
	require.NoError(t, err)
	_, err = r.Vote(ctx, "a", rep.ID, model.DirectionUp)
	require.NoError(t, err)

	raw, ok, err := kv.Get(ctx, recordKey(rep.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, `"votes"`)

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.VoteTally{Up: 1}, reports[0].Votes)
}

func TestSubmit_StorageLayout(t *testing.T) {
	r, kv := newTestRegistry(t)
	ctx := context.Background()

	shot := "data:image/png;base64," + strings.Repeat("A", 1000)
	first, err := r.Submit(ctx, model.SubmissionRequest{Name: "first", Type: "t"})
	require.NoError(t, err)
	second, err := r.Submit(ctx, model.SubmissionRequest{Name: "second", Type: "t", Screenshots: []string{shot, shot}})
	require.NoError(t, err)

	index, ok, err := kv.Get(ctx, "community_reports")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, fmt.Sprintf("[%d,%d]", second.ID, first.ID), index)

	raw, ok, err := kv.Get(ctx, fmt.Sprintf("report_%d", second.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "base64", "record holds no screenshot data")
	assert.Contains(t, raw, `"shots":2`)

	for i := 0; i < 2; i++ {
		got, ok, err := kv.Get(ctx, fmt.Sprintf("report_%d_shot_%d", second.ID, i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, shot, got)
	}

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, []string{shot, shot}, reports[0].Screenshots)
	assert.Empty(t, reports[1].Screenshots)

	summaries, err := r.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Empty(t, summaries[0].Screenshots)
}

func TestReports_SkipsMissingAndCorruptRecords(t *testing.T) {
	r, kv := newTestRegistry(t)
	ctx := context.Background()

	kept, err := r.Submit(ctx, model.SubmissionRequest{Name: "kept", Type: "t"})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "community_reports", fmt.Sprintf("[7,8,%d]", kept.ID)))
	require.NoError(t, kv.Set(ctx, "report_8", "{broken"))

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "kept", reports[0].Name)
}

func TestSubmit_FailedScreenshotWriteListsNothing(t *testing.T) {
	kv := &failingShotKV{MemoryRepo: repository.NewMemoryRepo()}
	r := NewSubmissionRegistry(kv, 0)
	ctx := context.Background()

	_, err := r.Submit(ctx, model.SubmissionRequest{Name: "x", Type: "t", Screenshots: []string{"data:image/png;base64,a"}})
	require.Error(t, err)

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

// failingShotKV rejects every screenshot write.
type failingShotKV struct {
	*repository.MemoryRepo
}

func (f *failingShotKV) Set(ctx context.Context, key, value string) error {
	if strings.Contains(key, "_shot_") {
		return repository.ErrValueTooLarge
	}
	return f.MemoryRepo.Set(ctx, key, value)
}

func voteN(t *testing.T, r *SubmissionRegistry, id int64, dir model.Direction, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := r.Vote(context.Background(), string(rune('a'+i)), id, dir)
		require.NoError(t, err)
	}
}

func TestListPromoted_Threshold(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	five, err := r.Submit(ctx, model.SubmissionRequest{Name: "five", Type: "t"})
	require.NoError(t, err)
	four, err := r.Submit(ctx, model.SubmissionRequest{Name: "four", Type: "t"})
	require.NoError(t, err)

	voteN(t, r, five.ID, model.DirectionUp, 5)
	voteN(t, r, four.ID, model.DirectionUp, 4)

	promoted, err := r.ListPromoted(ctx, 5)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, "five", promoted[0].Name)

	// One down vote drops it back below the threshold.
	_, err = r.Vote(ctx, "z", five.ID, model.DirectionDown)
	require.NoError(t, err)
	promoted, err = r.ListPromoted(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, promoted)
}

func TestRanked_OrderAndHints(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	low, err := r.Submit(ctx, model.SubmissionRequest{Name: "low", Type: "t"})
	require.NoError(t, err)
	near, err := r.Submit(ctx, model.SubmissionRequest{Name: "near", Type: "t"})
	require.NoError(t, err)
	top, err := r.Submit(ctx, model.SubmissionRequest{Name: "top", Type: "t"})
	require.NoError(t, err)

	voteN(t, r, top.ID, model.DirectionUp, 6)
	voteN(t, r, near.ID, model.DirectionUp, 3)
	_, err = r.Vote(ctx, "me", low.ID, model.DirectionDown)
	require.NoError(t, err)

	ranked, err := r.Ranked(ctx, "me")
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "top", ranked[0].Name)
	assert.True(t, ranked[0].Promoted)
	assert.Nil(t, ranked[0].VotesToPromote)

	assert.Equal(t, "near", ranked[1].Name)
	assert.False(t, ranked[1].Promoted)
	require.NotNil(t, ranked[1].VotesToPromote)
	assert.Equal(t, 2, *ranked[1].VotesToPromote)

	assert.Equal(t, "low", ranked[2].Name)
	assert.Equal(t, -1, ranked[2].Score)
	assert.Nil(t, ranked[2].VotesToPromote)
	assert.Equal(t, model.DirectionDown, ranked[2].UserVote)
}

func TestVote_UnknownReport(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Vote(context.Background(), "a", 12345, model.DirectionUp)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReports_CorruptListReadsEmpty(t *testing.T) {
	r, kv := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "community_reports", "[{broken"))

	reports, err := r.Reports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = r.Submit(ctx, model.SubmissionRequest{Name: "x", Type: "t"})
	require.NoError(t, err)
	reports, err = r.Reports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestPromoteInto(t *testing.T) {
	records := []model.ScamRecord{{ID: "1", Name: "FTX"}}
	promoted := []model.SubmittedReport{
		{ID: 100, Name: "Rug Pull DAO", Type: "Crypto", Date: "2024-01-02", Description: "d", Evidence: "https://example.test"},
		{ID: 101, Name: "FTX", Type: "Exchange"},
		{ID: 102, Name: "Rug Pull DAO", Type: "Crypto"},
	}

	out := PromoteInto(records, promoted)

	require.Len(t, out, 2)
	assert.Equal(t, records[0], out[0])
	assert.Equal(t, model.ScamRecord{
		ID:          "c_100",
		Name:        "Rug Pull DAO",
		Type:        "Crypto",
		Date:        "2024-01-02",
		Losses:      model.LossesUnknown,
		Status:      model.StatusUnderInvestigation,
		Description: "d",
		Source:      "https://example.test",
		Community:   true,
	}, out[1])
	assert.Len(t, records, 1, "input not modified")
}

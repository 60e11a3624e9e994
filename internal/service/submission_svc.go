package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/repository"
)

const (
	// reportsKey holds the report ids, newest first. Records live under
	// report_<id> and screenshots under report_<id>_shot_<n>.
	reportsKey = "community_reports"

	DefaultPromotionThreshold = 5
	// PromotionHintWindow is how close to the threshold a report must be
	// before the board shows how many votes it still needs.
	PromotionHintWindow = 2
	MaxScreenshots      = model.MaxScreenshots

	DefaultDescription = "No description provided"
	DefaultAlias       = "Anonymous"

	promotedIDPrefix = "c_"
)

// reportRecord is the persisted shape of a report. Tallies are kept in the
// report ledger and screenshots under their own keys.
type reportRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Evidence    string `json:"evidence,omitempty"`
	Alias       string `json:"alias"`
	Shots       int    `json:"shots"`
	Date        string `json:"date"`
}

func (r reportRecord) withVotes(t model.VoteTally) model.SubmittedReport {
	return model.SubmittedReport{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Evidence:    r.Evidence,
		Alias:       r.Alias,
		Screenshots: []string{},
		Date:        r.Date,
		Votes:       t,
	}
}

func recordKey(id int64) string {
	return "report_" + reportKey(id)
}

func shotKey(id int64, n int) string {
	return fmt.Sprintf("report_%d_shot_%d", id, n)
}

// SubmissionRegistry stores community reports, newest first, and decides
// which of them are promoted into the main listing.
type SubmissionRegistry struct {
	kv        repository.KV
	ledger    *VoteLedger
	threshold int
	now       func() time.Time

	mu sync.Mutex
}

func NewSubmissionRegistry(kv repository.KV, threshold int) *SubmissionRegistry {
	if threshold <= 0 {
		threshold = DefaultPromotionThreshold
	}
	return &SubmissionRegistry{
		kv:        kv,
		ledger:    NewVoteLedger(kv, NamespaceReport),
		threshold: threshold,
		now:       time.Now,
	}
}

func (r *SubmissionRegistry) Threshold() int {
	return r.threshold
}

// Submit validates and stores a new report at the head of the list.
// Screenshots and the record are written before the index, so a failed
// submit never lists a half-stored report.
func (r *SubmissionRegistry) Submit(ctx context.Context, req model.SubmissionRequest) (*model.SubmittedReport, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = strings.TrimSpace(req.QuickType)
	}
	if typ == "" {
		return nil, ErrMissingType
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = DefaultDescription
	}
	alias := strings.TrimSpace(req.Alias)
	if alias == "" {
		alias = DefaultAlias
	}
	screenshots := req.Screenshots
	if len(screenshots) > MaxScreenshots {
		screenshots = screenshots[:MaxScreenshots]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	id := now.UnixMilli()
	for _, existing := range ids {
		if existing >= id {
			id = existing + 1
		}
	}

	rec := reportRecord{
		ID:          id,
		Name:        name,
		Type:        typ,
		Description: description,
		Evidence:    strings.TrimSpace(req.Evidence),
		Alias:       alias,
		Shots:       len(screenshots),
		Date:        now.Format("2006-01-02"),
	}

	for i, shot := range screenshots {
		if err := r.kv.Set(ctx, shotKey(id, i), shot); err != nil {
			return nil, fmt.Errorf("store screenshot: %w", err)
		}
	}
	if err := repository.SetJSON(ctx, r.kv, recordKey(id), rec); err != nil {
		return nil, err
	}
	ids = append([]int64{id}, ids...)
	if err := repository.SetJSON(ctx, r.kv, reportsKey, ids); err != nil {
		return nil, err
	}

	log.Info().Int64("report_id", id).Str("type", typ).Int("screenshots", rec.Shots).Msg("report submitted")

	report := rec.withVotes(model.VoteTally{})
	report.Screenshots = append(report.Screenshots, screenshots...)
	return &report, nil
}

// Summaries returns every stored report, newest first, with its tally but
// without screenshots.
func (r *SubmissionRegistry) Summaries(ctx context.Context) ([]model.SubmittedReport, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := r.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]model.SubmittedReport, 0, len(records))
	for _, rec := range records {
		reports = append(reports, rec.withVotes(snap.Tally(reportKey(rec.ID))))
	}
	return reports, nil
}

// Reports returns every stored report, newest first, with its tally and
// screenshots.
func (r *SubmissionRegistry) Reports(ctx context.Context) ([]model.SubmittedReport, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := r.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]model.SubmittedReport, 0, len(records))
	for _, rec := range records {
		rep := rec.withVotes(snap.Tally(reportKey(rec.ID)))
		if rep.Screenshots, err = r.screenshots(ctx, rec); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Ranked returns the board listing: reports ordered by score descending,
// ties in submission order, decorated with clientID's votes and the
// promotion state.
func (r *SubmissionRegistry) Ranked(ctx context.Context, clientID string) ([]model.RankedReport, error) {
	reports, err := r.Reports(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(reports, func(a, b model.SubmittedReport) int {
		return cmp.Compare(b.Score(), a.Score())
	})

	ranked := make([]model.RankedReport, 0, len(reports))
	for _, rep := range reports {
		mark, err := r.ledger.UserMark(ctx, clientID, reportKey(rep.ID))
		if err != nil {
			return nil, err
		}
		score := rep.Score()
		item := model.RankedReport{
			SubmittedReport: rep,
			Score:           score,
			UserVote:        mark,
			Promoted:        score >= r.threshold,
		}
		if !item.Promoted && score >= r.threshold-PromotionHintWindow {
			need := r.threshold - score
			item.VotesToPromote = &need
		}
		ranked = append(ranked, item)
	}
	return ranked, nil
}

// ListPromoted returns the reports whose score has reached threshold, in
// stored order, without screenshots. A non-positive threshold uses the
// registry's own.
func (r *SubmissionRegistry) ListPromoted(ctx context.Context, threshold int) ([]model.SubmittedReport, error) {
	if threshold <= 0 {
		threshold = r.threshold
	}
	reports, err := r.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	promoted := reports[:0]
	for _, rep := range reports {
		if rep.Score() >= threshold {
			promoted = append(promoted, rep)
		}
	}
	return promoted, nil
}

// Vote casts clientID's vote on report id.
func (r *SubmissionRegistry) Vote(ctx context.Context, clientID string, id int64, dir model.Direction) (*model.VoteResponse, error) {
	ids, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ids, id) {
		return nil, ErrReportNotFound
	}
	return castVote(ctx, r.ledger, clientID, reportKey(id), dir)
}

func (r *SubmissionRegistry) loadIndex(ctx context.Context) ([]int64, error) {
	var ids []int64
	_, err := repository.GetJSON(ctx, r.kv, reportsKey, &ids)
	if errors.Is(err, repository.ErrCorrupt) {
		log.Warn().Err(err).Str("key", reportsKey).Msg("registry: resetting corrupt report index")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	return ids, nil
}

// load reads the indexed records. A record that is missing or corrupt is
// logged and left out.
func (r *SubmissionRegistry) load(ctx context.Context) ([]reportRecord, error) {
	ids, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]reportRecord, 0, len(ids))
	for _, id := range ids {
		var rec reportRecord
		ok, err := repository.GetJSON(ctx, r.kv, recordKey(id), &rec)
		if errors.Is(err, repository.ErrCorrupt) {
			log.Warn().Err(err).Int64("report_id", id).Msg("registry: skipping corrupt report")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load report: %w", err)
		}
		if !ok {
			log.Warn().Int64("report_id", id).Msg("registry: skipping missing report")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *SubmissionRegistry) screenshots(ctx context.Context, rec reportRecord) ([]string, error) {
	shots := make([]string, 0, rec.Shots)
	for i := range min(rec.Shots, MaxScreenshots) {
		shot, ok, err := r.kv.Get(ctx, shotKey(rec.ID, i))
		if err != nil {
			return nil, fmt.Errorf("load screenshot: %w", err)
		}
		if ok {
			shots = append(shots, shot)
		}
	}
	return shots, nil
}

// PromoteInto returns records followed by the promoted reports projected as
// records. A report whose name exactly matches an existing record is skipped;
// the first record with a name wins.
func PromoteInto(records []model.ScamRecord, promoted []model.SubmittedReport) []model.ScamRecord {
	out := slices.Clone(records)
	names := make(map[string]bool, len(records)+len(promoted))
	for _, rec := range records {
		names[rec.Name] = true
	}
	for _, rep := range promoted {
		if names[rep.Name] {
			continue
		}
		names[rep.Name] = true
		out = append(out, model.ScamRecord{
			ID:          model.RecordID(promotedIDPrefix + reportKey(rep.ID)),
			Name:        rep.Name,
			Type:        rep.Type,
			Date:        rep.Date,
			Losses:      model.LossesUnknown,
			Status:      model.StatusUnderInvestigation,
			Description: rep.Description,
			Source:      rep.Evidence,
			Community:   true,
		})
	}
	return out
}

func reportKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// castVote applies a vote through ledger and builds the API response.
func castVote(ctx context.Context, ledger *VoteLedger, clientID, id string, dir model.Direction) (*model.VoteResponse, error) {
	tally, action, err := ledger.Cast(ctx, clientID, id, dir)
	if err != nil {
		return nil, err
	}
	mark := dir
	if action == model.VoteActionUndo {
		mark = model.DirectionNone
	}
	return &model.VoteResponse{
		Success:  true,
		Tally:    tally,
		NewScore: tally.Score(),
		UserVote: mark,
		Action:   action,
	}, nil
}

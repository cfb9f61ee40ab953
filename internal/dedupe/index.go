package dedupe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/similarity"
	"github.com/spigell/job-autopilot/internal/storage"
	"github.com/spigell/job-autopilot/internal/textnorm"
)

// DefaultCleanupDays is how far back Cleanup reaches when no age is given.
const DefaultCleanupDays = 30

// recentWindow is the span Stats counts as a recent application.
const recentWindow = 7 * 24 * time.Hour

// Index answers duplicate queries against the recorded applications and
// owns all writes to them. Writes are serialized; reads go straight to
// the store.
type Index struct {
	store      *storage.Store
	scorer     *similarity.Scorer
	thresholds Thresholds
	logger     *zap.Logger

	// mu makes the duplicate check and the subsequent insert atomic.
	mu sync.Mutex
}

// New builds an Index. A zero thresholds value falls back to the
// defaults.
func New(store *storage.Store, scorer *similarity.Scorer, thresholds Thresholds, log *zap.Logger) (*Index, error) {
	if store == nil {
		return nil, errors.New("application store is required")
	}
	if scorer == nil {
		return nil, errors.New("similarity scorer is required")
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid duplicate thresholds: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Index{
		store:      store,
		scorer:     scorer,
		thresholds: thresholds,
		logger:     log,
	}, nil
}

// probe is a candidate with its derived comparison fields.
type probe struct {
	id          string
	normTitle   string
	normCompany string
	url         string
	description string
}

func (ix *Index) newProbe(cand Candidate) probe {
	return probe{
		id:          GenerateID(cand.Title, cand.Company, cand.URL),
		normTitle:   textnorm.NormalizeTitle(cand.Title),
		normCompany: textnorm.NormalizeCompany(cand.Company),
		url:         cand.URL,
		description: excerpt(cand.Description),
	}
}

// FindDuplicates returns every recorded application the candidate
// resembles, strongest first.
func (ix *Index) FindDuplicates(ctx context.Context, cand Candidate) ([]Match, error) {
	apps, err := ix.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return ix.findAmong(ctx, ix.newProbe(cand), apps, ""), nil
}

// findAmong classifies the probe against every application except selfID,
// which keeps a stored row from matching itself during index scans.
func (ix *Index) findAmong(ctx context.Context, pr probe, apps []storage.Application, selfID string) []Match {
	var matches []Match
	for i := range apps {
		if selfID != "" && apps[i].ID == selfID {
			continue
		}
		if match := ix.classify(ctx, pr, &apps[i]); match != nil {
			matches = append(matches, *match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// classify compares the probe against one recorded application and
// returns the match, or nil when the pair is not similar enough.
func (ix *Index) classify(ctx context.Context, pr probe, app *storage.Application) *Match {
	titleSim := ix.scorer.Similarity(ctx, pr.normTitle, app.NormTitle)
	companySim := ix.scorer.Similarity(ctx, pr.normCompany, app.NormCompany)

	var (
		matchType string
		overall   float64
		factors   []string
	)

	switch {
	case pr.url != "" && app.URL != "" && pr.url == app.URL:
		matchType = MatchExact
		overall = 1.0
		factors = append(factors, FactorIdenticalURL)

	case titleSim >= ix.thresholds.Title && companySim >= ix.thresholds.Company:
		matchType = MatchHigh
		overall = (titleSim + companySim) / 2
		factors = append(factors, FactorTitleMatch, FactorCompanyMatch)

		if pr.description != "" && app.Description != "" {
			descSim := ix.scorer.Similarity(ctx, pr.description, excerpt(app.Description))
			if descSim > descriptionAgreement {
				factors = append(factors, FactorDescription)
				overall = (overall + descSim) / 2
			}
		}

	case titleSim >= ix.thresholds.Potential && companySim >= ix.thresholds.Potential:
		matchType = MatchPotential
		overall = (titleSim + companySim) / 2
		factors = append(factors, FactorSimilarTitle, FactorSimilarCompany)

	default:
		return nil
	}

	if overall < ix.thresholds.Potential {
		return nil
	}

	return &Match{
		JobID:      pr.id,
		ExistingID: app.ID,
		Similarity: overall,
		Type:       matchType,
		Factors:    factors,
		Confidence: overall,
	}
}

// IsDuplicate reports whether the candidate definitively duplicates a
// recorded application. The best match comes back either way so callers
// can surface weaker resemblances.
func (ix *Index) IsDuplicate(ctx context.Context, cand Candidate) (bool, *Match, error) {
	matches, err := ix.FindDuplicates(ctx, cand)
	if err != nil {
		return false, nil, err
	}
	if len(matches) == 0 {
		return false, nil, nil
	}

	best := matches[0]
	definitive := best.Type == MatchExact || best.Similarity >= ix.thresholds.High
	return definitive, &best, nil
}

// Add records the candidate unless it definitively duplicates an
// existing application. It returns whether a record was created and the
// application the candidate now maps to: the new record, or the existing
// one it duplicates. Weaker resemblances are stamped on the new record.
func (ix *Index) Add(ctx context.Context, cand Candidate) (bool, *storage.Application, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if strings.TrimSpace(cand.Title) == "" && strings.TrimSpace(cand.Company) == "" {
		ix.logger.Warn("recording application without title or company", zap.String("url", cand.URL))
	}

	definitive, best, err := ix.IsDuplicate(ctx, cand)
	if err != nil {
		return false, nil, err
	}

	if definitive {
		existing, err := ix.store.Get(ctx, best.ExistingID)
		if err != nil {
			return false, nil, fmt.Errorf("load duplicated application: %w", err)
		}
		ix.logger.Info("duplicate application detected",
			zap.String("title", cand.Title),
			zap.String("company", cand.Company),
			zap.String("existing_id", existing.ID),
			zap.Float64("similarity", best.Similarity),
		)
		return false, existing, nil
	}

	status := cand.Status
	if status == "" {
		status = storage.StatusApplied
	}

	app := &storage.Application{
		ID:          GenerateID(cand.Title, cand.Company, cand.URL),
		Title:       cand.Title,
		Company:     cand.Company,
		NormTitle:   textnorm.NormalizeTitle(cand.Title),
		NormCompany: textnorm.NormalizeCompany(cand.Company),
		URL:         cand.URL,
		Description: excerpt(cand.Description),
		Location:    cand.Location,
		SalaryText:  cand.SalaryText,
		Source:      cand.Source,
		AppliedAt:   time.Now(),
		Status:      status,
		Attributes:  cand.Attributes,
	}
	if best != nil && best.Similarity >= ix.thresholds.Potential {
		app.DuplicateOf = best.ExistingID
		app.SimilarityScore = best.Similarity
	}

	created, err := ix.store.Insert(ctx, app)
	if err != nil {
		return false, nil, err
	}
	if !created {
		// Same id with no similarity match still means the very same
		// posting was recorded before.
		existing, err := ix.store.Get(ctx, app.ID)
		if err != nil {
			return false, nil, fmt.Errorf("load colliding application: %w", err)
		}
		ix.logger.Info("application already recorded",
			zap.String("id", existing.ID),
			zap.String("title", existing.Title),
		)
		return false, existing, nil
	}

	ix.logger.Info("recorded new application",
		zap.String("id", app.ID),
		zap.String("title", app.Title),
		zap.String("company", app.Company),
	)
	return true, app, nil
}

// UpdateStatus moves one application to a new status.
func (ix *Index) UpdateStatus(ctx context.Context, id, status string) error {
	if !storage.ValidStatus(status) {
		return fmt.Errorf("unknown application status %q", status)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	ix.logger.Info("updated application status",
		zap.String("id", id),
		zap.String("status", status),
	)
	return nil
}

// Stats summarizes the recorded applications.
type Stats struct {
	Total      int            `json:"total_applications"`
	ByStatus   map[string]int `json:"by_status"`
	ByCompany  map[string]int `json:"by_company"`
	BySource   map[string]int `json:"by_source"`
	Duplicates int            `json:"duplicates_detected"`
	Recent     int            `json:"recent_applications"`
}

// Stats aggregates status, company and source counts plus how many
// records were flagged as duplicates and how many are recent.
func (ix *Index) Stats(ctx context.Context) (*Stats, error) {
	apps, err := ix.store.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:     len(apps),
		ByStatus:  map[string]int{},
		ByCompany: map[string]int{},
		BySource:  map[string]int{},
	}

	recentCutoff := time.Now().Add(-recentWindow)
	for i := range apps {
		app := &apps[i]
		stats.ByStatus[app.Status]++
		stats.ByCompany[app.Company]++

		source := app.Source
		if source == "" {
			source = "unknown"
		}
		stats.BySource[source]++

		if app.DuplicateOf != "" {
			stats.Duplicates++
		}
		if app.AppliedAt.After(recentCutoff) {
			stats.Recent++
		}
	}

	return stats, nil
}

// PotentialDuplicates scans the whole index for resembling pairs, each
// pair reported once, strongest first.
func (ix *Index) PotentialDuplicates(ctx context.Context) ([]Match, error) {
	apps, err := ix.store.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var all []Match

	for i := range apps {
		pr := probe{
			id:          apps[i].ID,
			normTitle:   apps[i].NormTitle,
			normCompany: apps[i].NormCompany,
			url:         apps[i].URL,
			description: excerpt(apps[i].Description),
		}
		for _, match := range ix.findAmong(ctx, pr, apps, apps[i].ID) {
			key := pairKey(match.JobID, match.ExistingID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, match)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Similarity > all[j].Similarity
	})
	return all, nil
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Cleanup removes rejected and unanswered applications older than the
// given number of days and returns how many went away.
func (ix *Index) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = DefaultCleanupDays
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	apps, err := ix.store.All(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var stale []string
	for i := range apps {
		app := &apps[i]
		if app.AppliedAt.Before(cutoff) &&
			(app.Status == storage.StatusRejected || app.Status == storage.StatusNoResponse) {
			stale = append(stale, app.ID)
		}
	}

	removed, err := ix.store.Delete(ctx, stale)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		ix.logger.Info("cleaned up old applications", zap.Int64("removed", removed))
	}
	return removed, nil
}

package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/matching"
	"github.com/spigell/job-autopilot/internal/posting"
)

type fitFilter struct {
	disabled bool
	reason   string
	config   *FitConfig
	results  map[string]*matching.Result
}

// NewFit creates the match-based filtering step.
func NewFit() Filter {
	return &fitFilter{}
}

func (f *fitFilter) Name() string { return "fit" }

func (f *fitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *fitFilter) IsEnabled() bool { return !f.disabled }

func (f *fitFilter) Validate(cfg *Config) error {
	f.config = nil
	if cfg != nil {
		f.config = cfg.Fit
	}
	if !f.IsEnabled() {
		return nil
	}
	if f.config == nil {
		f.config = &FitConfig{}
	}
	if f.config.MinScore < 0 || f.config.MinScore > 1 {
		return fmt.Errorf("minimum match score must be within [0, 1], got %v", f.config.MinScore)
	}
	return nil
}

func (f *fitFilter) Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if deps.Matcher == nil {
		if deps.Logger != nil {
			deps.Logger.Info("matcher is not configured; skipping fit filter")
		}
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}
	if deps.Resume == nil {
		return p, Step{}, fmt.Errorf("resume is required for match evaluation")
	}

	cfg := f.config
	if cfg == nil {
		cfg = &FitConfig{}
	}

	ranked, err := deps.Matcher.MatchBatch(ctx, deps.Resume, p, matching.BatchOptions{
		Workers: cfg.Workers,
		Limit:   cfg.Top,
	})
	if err != nil {
		return p, Step{}, err
	}

	f.results = make(map[string]*matching.Result, len(ranked))
	approved := make([]*posting.Posting, 0, len(ranked))
	for _, result := range ranked {
		if result.OverallScore < cfg.MinScore {
			if deps.Logger != nil {
				deps.Logger.Info("posting rejected by match score",
					zap.String("posting_id", result.JobID),
					zap.Float64("score", result.OverallScore),
					zap.String("recommendation", result.Recommendation),
				)
			}
			continue
		}

		item := p.FindByID(result.JobID)
		if item == nil {
			continue
		}

		if deps.Logger != nil {
			deps.Logger.Info("posting approved by match score",
				zap.String("posting_id", result.JobID),
				zap.Float64("score", result.OverallScore),
			)
		}

		item.Match = result.Summary()
		approved = append(approved, item)
		f.results[result.JobID] = result
	}

	// The ranked order from the matcher carries over to the survivors.
	p.Items = approved

	if deps.Logger != nil {
		deps.Logger.Info("match filtering completed",
			zap.Int("initial_postings", initial),
			zap.Int("approved_postings", len(approved)),
		)
	}

	return p, Step{Initial: initial, Dropped: initial - len(approved), Left: len(approved)}, nil
}

// Results exposes the full match results collected during Apply.
func (f *fitFilter) Results() map[string]*matching.Result {
	if f.results == nil {
		return map[string]*matching.Result{}
	}
	return f.results
}

func (f *fitFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil {
		details["min_score"] = strconv.FormatFloat(f.config.MinScore, 'f', 2, 64)
		if f.config.Workers > 0 {
			details["workers"] = strconv.Itoa(f.config.Workers)
		}
		if f.config.Top > 0 {
			details["top"] = strconv.Itoa(f.config.Top)
		}
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

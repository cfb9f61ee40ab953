package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/dedupe"
	"github.com/spigell/job-autopilot/internal/posting"
)

const forceFlagSetMsg = "force flag is set"

type appliedFilter struct {
	ignore bool
}

// NewApplied creates a filter that removes postings already recorded in the application index.
func NewApplied(cmd *cobra.Command) Filter {
	ignore := false
	if cmd != nil {
		flag := cmd.Flag("ignore-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}
	return &appliedFilter{ignore: ignore}
}

func (f *appliedFilter) Name() string { return "already_applied" }

func (f *appliedFilter) Disable(string) {}

func (f *appliedFilter) IsEnabled() bool { return true }

func (f *appliedFilter) Validate(*Config) error { return nil }

func (f *appliedFilter) Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()

	// Later steps and the action loop key postings by id, so missing ones
	// are generated here even when the history check itself is bypassed.
	for _, item := range p.Items {
		if item.ID == "" {
			item.ID = dedupe.GenerateID(item.Title, item.Company, item.ApplicationURL)
		}
	}

	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("keeping already applied postings", zap.String("reason", forceFlagSetMsg))
		}
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	if deps.Index == nil {
		return p, Step{}, fmt.Errorf("application index is required")
	}

	kept := make([]*posting.Posting, 0, initial)
	var excluded []string
	for _, item := range p.Items {
		duplicate, match, err := deps.Index.IsDuplicate(ctx, dedupe.CandidateFromPosting(item))
		if err != nil {
			return p, Step{}, fmt.Errorf("check application history: %w", err)
		}
		if duplicate {
			excluded = append(excluded, item.ID)
			if deps.Logger != nil {
				deps.Logger.Debug("posting matches an application on record",
					zap.String("posting_id", item.ID),
					zap.String("existing_id", match.ExistingID),
					zap.String("match_type", match.Type),
					zap.Float64("similarity", match.Similarity),
				)
			}
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings based on application history",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *appliedFilter) Status() Status {
	details := map[string]string{
		"exclude_applied": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}

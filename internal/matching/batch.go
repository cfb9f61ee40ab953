package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
)

// DefaultWorkers caps concurrent match computations unless overridden.
const DefaultWorkers = 4

// BatchOptions tune MatchBatch.
type BatchOptions struct {
	// Workers caps concurrent match computations. Non-positive values
	// fall back to DefaultWorkers.
	Workers int
	// Limit truncates the ranked output when positive. Zero keeps
	// every result.
	Limit int
}

// MatchBatch scores every posting concurrently and returns the results
// ranked best-first: overall score, then skill score, then job id as the
// final tie-break. Cancelling the context aborts outstanding work.
func (m *Matcher) MatchBatch(ctx context.Context, resume *profile.Resume, postings *posting.Postings, opts BatchOptions) ([]*Result, error) {
	if postings == nil || postings.Len() == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	m.logger.Info("matching postings against the candidate profile",
		zap.Int("count", postings.Len()),
		zap.Int("workers", workers),
	)

	results := make([]*Result, postings.Len())

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for idx, job := range postings.Items {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[idx] = m.Match(groupCtx, resume, job)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("batch matching aborted: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		if results[i].SkillScore != results[j].SkillScore {
			return results[i].SkillScore > results[j].SkillScore
		}
		return results[i].JobID < results[j].JobID
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

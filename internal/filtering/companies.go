package filtering

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/textnorm"
)

type companiesFilter struct {
	companies map[string]bool
}

// NewCompanies creates a filter that removes postings from companies excluded in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = map[string]bool{}
	if cfg == nil {
		return nil
	}
	// Normalized once here so "Google LLC" in the config matches "Google Inc."
	// in a posting.
	for _, company := range cfg.ExcludedCompanies {
		if name := textnorm.NormalizeCompany(company); name != "" {
			f.companies[name] = true
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if len(f.companies) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	kept := make([]*posting.Posting, 0, initial)
	var excluded []string
	for _, item := range p.Items {
		if f.companies[textnorm.NormalizeCompany(item.Company)] {
			excluded = append(excluded, item.Company)
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings by company",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		names := make([]string, 0, len(f.companies))
		for name := range f.companies {
			names = append(names, name)
		}
		sort.Strings(names)
		details["companies"] = strings.Join(names, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

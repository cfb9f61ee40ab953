package filtering

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/posting"
)

func TestCompaniesFilterDropsConfiguredCompanies(t *testing.T) {
	t.Parallel()

	f := NewCompanies()
	if err := f.Validate(&Config{ExcludedCompanies: []string{"Google LLC", "   "}}); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	p := &posting.Postings{Items: []*posting.Posting{
		{ID: "a", Title: "Backend Engineer", Company: "Google Inc."},
		{ID: "b", Title: "Backend Engineer", Company: "Initech"},
		{ID: "c", Title: "Backend Engineer", Company: "Alphabet"},
	}}

	left, step, err := f.Apply(context.Background(), Deps{Logger: zap.NewNop()}, p)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if step.Initial != 3 || step.Dropped != 2 || step.Left != 1 {
		t.Errorf("step = %+v, want {3 2 1}", step)
	}
	if left.Len() != 1 || left.Items[0].ID != "b" {
		t.Errorf("survivors = %+v, want only b", left.Items)
	}
}

func TestCompaniesFilterWithoutConfig(t *testing.T) {
	t.Parallel()

	f := NewCompanies()
	if err := f.Validate(nil); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	p := &posting.Postings{Items: []*posting.Posting{
		{ID: "a", Company: "Google"},
	}}

	left, step, err := f.Apply(context.Background(), Deps{}, p)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if step.Dropped != 0 || left.Len() != 1 {
		t.Errorf("step = %+v left = %d, want nothing dropped", step, left.Len())
	}
}

// Package dedupe detects near-duplicate job applications and keeps the
// persistent index of everything already applied to.
package dedupe

import (
	"fmt"

	"github.com/spigell/job-autopilot/internal/posting"
)

// Match types ordered by severity. Exact means an identical URL, high
// similarity a strong title and company agreement, potential a looser
// resemblance worth flagging but not blocking.
const (
	MatchExact     = "exact"
	MatchHigh      = "high_similarity"
	MatchPotential = "potential"
)

// Factor labels recorded on a match.
const (
	FactorIdenticalURL   = "identical_url"
	FactorTitleMatch     = "title_match"
	FactorCompanyMatch   = "company_match"
	FactorDescription    = "description_match"
	FactorSimilarTitle   = "similar_title"
	FactorSimilarCompany = "similar_company"
)

// descriptionAgreement is the description similarity above which two
// high-similarity postings count as describing the same role.
const descriptionAgreement = 0.7

// excerptLen bounds how much description text is stored and compared.
const excerptLen = 500

// Thresholds tune the duplicate classifier.
type Thresholds struct {
	// High marks a match as a definitive duplicate.
	High float64 `json:"high_similarity" mapstructure:"high-similarity"`
	// Potential is the floor below which matches are discarded.
	Potential float64 `json:"potential_duplicate" mapstructure:"potential-duplicate"`
	// Title and Company gate the high-similarity classification.
	Title   float64 `json:"title_similarity" mapstructure:"title-similarity"`
	Company float64 `json:"company_similarity" mapstructure:"company-similarity"`
}

// DefaultThresholds returns the tuning the classifier ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		High:      0.85,
		Potential: 0.70,
		Title:     0.80,
		Company:   0.90,
	}
}

// Validate rejects thresholds outside (0, 1].
func (t Thresholds) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"high-similarity", t.High},
		{"potential-duplicate", t.Potential},
		{"title-similarity", t.Title},
		{"company-similarity", t.Company},
	} {
		if v.value <= 0 || v.value > 1 {
			return fmt.Errorf("threshold %s must be within (0, 1], got %v", v.name, v.value)
		}
	}
	return nil
}

// Match describes one detected duplicate pair. JobID is the probed
// posting, ExistingID the recorded application it resembles.
type Match struct {
	JobID      string   `json:"job1_id"`
	ExistingID string   `json:"job2_id"`
	Similarity float64  `json:"similarity_score"`
	Type       string   `json:"match_type"`
	Factors    []string `json:"matching_factors"`
	Confidence float64  `json:"confidence"`
}

// Candidate is an incoming posting probed against the index.
type Candidate struct {
	Title       string
	Company     string
	URL         string
	Description string
	Location    string
	SalaryText  string
	Source      string
	// Status overrides the default applied status when recording.
	Status string
	// Attributes carries source extras stored alongside the record.
	Attributes map[string]any
}

// CandidateFromPosting adapts a scored posting for the index.
func CandidateFromPosting(p *posting.Posting) Candidate {
	cand := Candidate{
		Title:       p.Title,
		Company:     p.Company,
		URL:         p.ApplicationURL,
		Description: p.Description,
		Location:    p.Location,
		Source:      p.SourcePlatform,
	}
	if p.Salary != nil {
		cand.SalaryText = p.SalaryText()
	}
	if p.Match != nil {
		cand.Attributes = map[string]any{
			"match_score":    p.Match.Score,
			"recommendation": p.Match.Recommendation,
		}
	}
	return cand
}

// excerpt bounds text at excerptLen runes.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLen {
		return text
	}
	return string(runes[:excerptLen])
}

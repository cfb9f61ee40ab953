// Package posting holds scraped job postings and the collection helpers
// the filtering pipeline works on.
package posting

import "fmt"

const (
	FieldID      = "ID"
	FieldCompany = "Company"
)

// SalaryRange is the advertised salary band. Nil on a posting means the
// posting did not state one.
type SalaryRange struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

// MatchSummary is the slice of a match result that travels with the
// posting through the pipeline.
type MatchSummary struct {
	Score          float64 `json:"score"`
	Recommendation string  `json:"recommendation"`
	Confidence     string  `json:"confidence"`
}

// Posting is one scraped job posting. Field names follow the scraping
// pipeline's JSON output.
type Posting struct {
	ID                string       `json:"id,omitempty"`
	Title             string       `json:"title,omitempty"`
	Company           string       `json:"company,omitempty"`
	Location          string       `json:"location,omitempty"`
	Description       string       `json:"description,omitempty"`
	RequiredSkills    []string     `json:"required_skills,omitempty"`
	PreferredSkills   []string     `json:"preferred_skills,omitempty"`
	ExperienceLevel   string       `json:"experience_level,omitempty"`
	EducationRequired string       `json:"education_required,omitempty"`
	Salary            *SalaryRange `json:"salary_range,omitempty"`
	JobType           string       `json:"job_type,omitempty"`
	RemoteFriendly    bool         `json:"remote_friendly,omitempty"`
	Industry          string       `json:"industry,omitempty"`
	CompanySize       string       `json:"company_size,omitempty"`
	Benefits          []string     `json:"benefits,omitempty"`
	ApplicationURL    string       `json:"application_url,omitempty"`
	SourcePlatform    string       `json:"source_platform,omitempty"`
	PostedDate        string       `json:"posted_date,omitempty"`

	// Match is attached by the fit filter once the posting is scored.
	Match *MatchSummary `json:"match,omitempty"`
}

// SalaryText renders the salary band for reports and index records.
func (p *Posting) SalaryText() string {
	if p.Salary == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", p.Salary.Min, p.Salary.Max)
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case FieldID:
		return p.ID
	case FieldCompany:
		return p.Company

	default:
		return ""
	}
}

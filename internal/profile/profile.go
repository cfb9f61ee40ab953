// Package profile holds the candidate resume as produced by the resume
// parsing pipeline. The engine consumes it read-only.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Contact identifies the candidate.
type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Degree         string   `json:"degree"`
	Field          string   `json:"field"`
	Institution    string   `json:"institution"`
	GraduationYear string   `json:"graduation_year,omitempty"`
	GPA            string   `json:"gpa,omitempty"`
	Honors         []string `json:"honors,omitempty"`
}

// Position is one role in the candidate's work history.
type Position struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date,omitempty"`
	DurationMonths   int      `json:"duration_months"`
	Responsibilities []string `json:"responsibilities"`
	Achievements     []string `json:"achievements"`
	SkillsUsed       []string `json:"skills_used"`
}

// Certification is a named professional certification.
type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	IssueDate    string `json:"issue_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	CredentialID string `json:"credential_id,omitempty"`
}

// Resume is the parsed candidate record. Skills are grouped by category
// (programming_languages, web_technologies, ...); derived fields such as
// the experience total come precomputed from the parser.
type Resume struct {
	Contact        Contact             `json:"contact_info"`
	Summary        string              `json:"summary"`
	Skills         map[string][]string `json:"skills"`
	Experience     []Position          `json:"work_experience"`
	Education      []Education         `json:"education"`
	Certifications []Certification     `json:"certifications"`
	Projects       []map[string]any    `json:"projects,omitempty"`
	Languages      []string            `json:"languages,omitempty"`
	Awards         []string            `json:"awards,omitempty"`
	Publications   []string            `json:"publications,omitempty"`
	RawText        string              `json:"raw_text,omitempty"`
	FilePath       string              `json:"file_path,omitempty"`
	ParsedAt       string              `json:"parsed_at,omitempty"`

	TotalExperienceYears float64            `json:"total_experience_years"`
	SeniorityLevel       string             `json:"seniority_level"`
	PrimaryDomain        string             `json:"primary_domain"`
	SkillConfidence      map[string]float64 `json:"skill_confidence_scores,omitempty"`
}

// AllSkills flattens the categorized skills into one list. Categories are
// visited in sorted order so the result is deterministic.
func (r *Resume) AllSkills() []string {
	if r == nil || len(r.Skills) == 0 {
		return nil
	}

	categories := make([]string, 0, len(r.Skills))
	for category := range r.Skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var skills []string
	for _, category := range categories {
		skills = append(skills, r.Skills[category]...)
	}

	return skills
}

// Load reads a parsed resume from the JSON file the parsing pipeline wrote.
func Load(path string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume file: %w", err)
	}

	var resume Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("parse resume file %s: %w", path, err)
	}

	return &resume, nil
}

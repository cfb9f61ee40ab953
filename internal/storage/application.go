package storage

import (
	"time"

	"gorm.io/datatypes"
)

// Application statuses tracked by the index. Cleanup only ever removes
// terminal ones.
const (
	StatusApplied     = "applied"
	StatusQueued      = "queued"
	StatusInterviewed = "interviewed"
	StatusOffer       = "offer"
	StatusRejected    = "rejected"
	StatusNoResponse  = "no_response"
)

var knownStatuses = map[string]bool{
	StatusApplied:     true,
	StatusQueued:      true,
	StatusInterviewed: true,
	StatusOffer:       true,
	StatusRejected:    true,
	StatusNoResponse:  true,
}

// ValidStatus reports whether the given status is one the index tracks.
func ValidStatus(status string) bool {
	return knownStatuses[status]
}

// Application is one recorded job application. NormTitle and NormCompany
// hold the normalized forms the duplicate detector compares so they are
// computed once at insert time. Attributes carries source-specific extras
// that have no column of their own.
type Application struct {
	ID          string `gorm:"primaryKey" json:"job_id"`
	Title       string `json:"job_title"`
	Company     string `json:"company"`
	NormTitle   string `json:"norm_title"`
	NormCompany string `json:"norm_company"`
	URL         string `json:"job_url"`
	Description string `json:"job_description"`
	Location    string `json:"location"`
	SalaryText  string `json:"salary_range"`
	Source      string `json:"job_source"`

	AppliedAt       time.Time `json:"application_date"`
	Status          string    `json:"application_status"`
	SimilarityScore float64   `json:"similarity_score"`
	DuplicateOf     string    `json:"duplicate_of"`

	Attributes datatypes.JSONMap `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Package matching scores a candidate resume against job postings along
// six dimensions and aggregates them into an overall match with a
// recommendation, confidence level and narrative analysis.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
	"github.com/spigell/job-autopilot/internal/similarity"
)

// DefaultSkillThreshold is the similarity above which a job skill counts
// as covered by a candidate skill.
const DefaultSkillThreshold = 0.85

// Recommendation labels, selected by overall score.
const (
	RecommendHighly   = "HIGHLY RECOMMENDED: Apply immediately with standard application"
	Recommend         = "RECOMMENDED: Apply with tailored resume and cover letter"
	RecommendConsider = "CONSIDER: Apply only if genuinely interested and willing to learn"
	RecommendSkip     = "NOT RECOMMENDED: Focus on better-matching opportunities"
)

// Confidence labels.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Weights distribute the overall score across the six dimensions. They
// must sum to one.
type Weights struct {
	Skills     float64 `json:"skills" mapstructure:"skills"`
	Experience float64 `json:"experience" mapstructure:"experience"`
	Education  float64 `json:"education" mapstructure:"education"`
	Location   float64 `json:"location" mapstructure:"location"`
	Culture    float64 `json:"culture" mapstructure:"culture"`
	Salary     float64 `json:"salary" mapstructure:"salary"`
}

// DefaultWeights returns the standard weighting scheme.
func DefaultWeights() Weights {
	return Weights{
		Skills:     0.35,
		Experience: 0.25,
		Education:  0.10,
		Location:   0.15,
		Culture:    0.10,
		Salary:     0.05,
	}
}

// Validate checks every weight is within [0,1] and the total is one.
func (w Weights) Validate() error {
	for name, value := range map[string]float64{
		"skills":     w.Skills,
		"experience": w.Experience,
		"education":  w.Education,
		"location":   w.Location,
		"culture":    w.Culture,
		"salary":     w.Salary,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("weight %q is %v, must be within [0,1]", name, value)
		}
	}

	sum := w.Skills + w.Experience + w.Education + w.Location + w.Culture + w.Salary
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights sum to %v, must sum to 1", sum)
	}

	return nil
}

// Preferences carry the candidate-side tuning the scorers consult.
type Preferences struct {
	Locations []string `json:"locations" mapstructure:"locations"`
	MinSalary int      `json:"min_salary" mapstructure:"min-salary"`
}

// Params configures a Matcher.
type Params struct {
	Weights     Weights
	Preferences Preferences
	// SkillThreshold overrides DefaultSkillThreshold when positive.
	SkillThreshold float64
}

// Analysis is the narrative part of a match result.
type Analysis struct {
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	Recommendations      []string `json:"recommendations"`
	SkillGaps            []string `json:"skill_gaps"`
	ExperienceAssessment string   `json:"experience_assessment"`
	EducationAssessment  string   `json:"education_assessment"`
	LocationNotes        string   `json:"location_notes"`
	OverallAssessment    string   `json:"overall_assessment"`
}

// Result is the outcome of matching one posting against the resume.
type Result struct {
	JobID           string    `json:"job_id"`
	OverallScore    float64   `json:"overall_score"`
	SkillScore      float64   `json:"skill_match_score"`
	ExperienceScore float64   `json:"experience_match_score"`
	EducationScore  float64   `json:"education_match_score"`
	LocationScore   float64   `json:"location_match_score"`
	CultureScore    float64   `json:"culture_fit_score"`
	SalaryScore     float64   `json:"salary_compatibility"`
	Analysis        *Analysis `json:"detailed_analysis"`
	Recommendation  string    `json:"recommendation"`
	MatchingSkills  []string  `json:"matching_skills"`
	MissingSkills   []string  `json:"missing_skills"`
	Confidence      string    `json:"confidence_level"`
}

// Summary converts the result into the compact form attached to postings.
func (r *Result) Summary() *posting.MatchSummary {
	return &posting.MatchSummary{
		Score:          r.OverallScore,
		Recommendation: r.Recommendation,
		Confidence:     r.Confidence,
	}
}

// Matcher scores postings against a resume. Safe for concurrent use.
type Matcher struct {
	scorer         *similarity.Scorer
	weights        Weights
	prefs          Preferences
	skillThreshold float64
	logger         *zap.Logger
}

// New builds a Matcher. Invalid weights are a construction error: a
// misconfigured weighting scheme must never silently skew every score.
func New(scorer *similarity.Scorer, params Params, log *zap.Logger) (*Matcher, error) {
	if scorer == nil {
		return nil, errors.New("similarity scorer is required")
	}
	if err := params.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher weights: %w", err)
	}

	threshold := params.SkillThreshold
	if threshold <= 0 {
		threshold = DefaultSkillThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		scorer:         scorer,
		weights:        params.Weights,
		prefs:          params.Preferences,
		skillThreshold: threshold,
		logger:         log,
	}, nil
}

type dimensionScores struct {
	skill      float64
	experience float64
	education  float64
	location   float64
	culture    float64
	salary     float64
}

func (d dimensionScores) weighted(w Weights) float64 {
	return d.skill*w.Skills +
		d.experience*w.Experience +
		d.education*w.Education +
		d.location*w.Location +
		d.culture*w.Culture +
		d.salary*w.Salary
}

func (d dimensionScores) mean() float64 {
	return (d.skill + d.experience + d.education + d.location + d.culture + d.salary) / 6
}

// Match scores one posting against the resume. All sub-scores and the
// overall score are within [0,1].
func (m *Matcher) Match(ctx context.Context, resume *profile.Resume, job *posting.Posting) *Result {
	m.logger.Debug("analyzing match",
		zap.String("job_id", job.ID),
		zap.String("title", job.Title),
		zap.String("company", job.Company),
	)

	scores := dimensionScores{
		skill:      m.skillScore(ctx, resume, job),
		experience: m.experienceScore(resume, job),
		education:  m.educationScore(resume, job),
		location:   m.locationScore(resume, job),
		culture:    m.cultureScore(resume, job),
		salary:     m.salaryScore(job),
	}

	overall := scores.weighted(m.weights)
	matched, missing := m.skillOverlap(ctx, resume, job)
	analysis := buildAnalysis(resume, job, scores, missing)

	return &Result{
		JobID:           job.ID,
		OverallScore:    overall,
		SkillScore:      scores.skill,
		ExperienceScore: scores.experience,
		EducationScore:  scores.education,
		LocationScore:   scores.location,
		CultureScore:    scores.culture,
		SalaryScore:     scores.salary,
		Analysis:        analysis,
		Recommendation:  recommendationFor(overall),
		MatchingSkills:  matched,
		MissingSkills:   missing,
		Confidence:      confidenceFor(overall, analysis),
	}
}

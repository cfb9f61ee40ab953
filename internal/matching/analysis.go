package matching

import (
	"strings"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
)

// buildAnalysis derives the human-readable assessment from the dimension
// scores. Slices start empty rather than nil so dumped reports render
// them as lists.
func buildAnalysis(resume *profile.Resume, job *posting.Posting, scores dimensionScores, missing []string) *Analysis {
	analysis := &Analysis{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{},
		SkillGaps:       append([]string{}, missing...),
	}

	switch {
	case scores.skill > 0.8:
		analysis.Strengths = append(analysis.Strengths, "Excellent skill match with job requirements")
	case scores.skill > 0.6:
		analysis.Strengths = append(analysis.Strengths, "Good skill match with some relevant experience")
	}
	if scores.experience > 0.8 {
		analysis.Strengths = append(analysis.Strengths, "Experience level aligns well with position")
	}
	if scores.location > 0.8 {
		analysis.Strengths = append(analysis.Strengths, "Location is compatible with job requirements")
	}

	if scores.skill < 0.5 {
		analysis.Weaknesses = append(analysis.Weaknesses, "Limited skill match with job requirements")
	}
	if scores.experience < 0.5 {
		analysis.Weaknesses = append(analysis.Weaknesses, "Experience level may not meet job requirements")
	}
	if scores.education < 0.5 {
		analysis.Weaknesses = append(analysis.Weaknesses, "Education requirements may not be fully met")
	}

	if scores.skill < 0.7 {
		analysis.Recommendations = append(analysis.Recommendations, "Consider acquiring missing technical skills")
	}
	if scores.experience < 0.7 {
		analysis.Recommendations = append(analysis.Recommendations, "Highlight relevant project experience")
	}

	analysis.ExperienceAssessment = experienceAssessment(resume, job)
	analysis.EducationAssessment = educationAssessment(job, scores.education)
	analysis.LocationNotes = locationNotes(job, scores.location)
	analysis.OverallAssessment = overallAssessment(scores.mean())

	return analysis
}

func experienceAssessment(resume *profile.Resume, job *posting.Posting) string {
	minYears := 0.0
	if level, ok := experienceLevels[strings.ToLower(strings.TrimSpace(job.ExperienceLevel))]; ok {
		minYears = level.min
	}

	switch diff := resume.TotalExperienceYears - minYears; {
	case diff > 2:
		return "Over-qualified based on years of experience"
	case diff >= 0:
		return "Meets experience requirements"
	default:
		return "Below minimum experience requirements"
	}
}

func educationAssessment(job *posting.Posting, score float64) string {
	required := strings.ToLower(strings.TrimSpace(job.EducationRequired))
	switch {
	case required == "" || required == "none":
		return "No formal education requirement"
	case score >= 1:
		return "Meets education requirements"
	case score >= 0.8:
		return "Slightly below the required education level"
	default:
		return "Below the required education level"
	}
}

func locationNotes(job *posting.Posting, score float64) string {
	switch {
	case job.RemoteFriendly:
		return "Remote position"
	case score >= 0.9:
		return "Located in a preferred area"
	case score >= 0.8:
		return "Near the candidate's current location"
	default:
		return "Relocation or commute likely required"
	}
}

func overallAssessment(mean float64) string {
	switch {
	case mean > 0.8:
		return "Excellent match - highly recommended to apply"
	case mean > 0.6:
		return "Good match - recommended to apply"
	case mean > 0.4:
		return "Moderate match - consider applying with tailored application"
	default:
		return "Poor match - may not be suitable"
	}
}

func recommendationFor(score float64) string {
	switch {
	case score >= 0.8:
		return RecommendHighly
	case score >= 0.6:
		return Recommend
	case score >= 0.4:
		return RecommendConsider
	default:
		return RecommendSkip
	}
}

// confidenceFor weighs the overall score against how many weaknesses the
// analysis surfaced.
func confidenceFor(score float64, analysis *Analysis) string {
	weaknesses := len(analysis.Weaknesses)
	switch {
	case score > 0.8 && weaknesses <= 1:
		return ConfidenceHigh
	case score > 0.6 && weaknesses <= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Package insights turns a match result into concrete advice for one
// application: strategy, resume tweaks, cover letter points and interview
// preparation.
package insights

import (
	"fmt"
	"strings"

	"github.com/spigell/job-autopilot/internal/matching"
)

// Application strategies by overall score tier.
const (
	StrategyStandard  = "Apply with confidence using standard approach"
	StrategyCustomize = "Customize application to emphasize matching qualifications"
	StrategyReferral  = "Consider reaching out to hiring manager or employee referral"
)

const (
	maxSkillsToDevelop = 5
	maxInterviewTopics = 3
)

// Insights summarize how to approach a single application.
type Insights struct {
	ApplicationStrategy  string   `json:"application_strategy"`
	ResumeOptimization   []string `json:"resume_optimization"`
	CoverLetterPoints    []string `json:"cover_letter_points"`
	InterviewPreparation []string `json:"interview_preparation"`
	SkillsToHighlight    []string `json:"skills_to_highlight"`
	SkillsToDevelop      []string `json:"skills_to_develop"`
}

// Build derives application advice from a match result. Slices are non-nil
// so dumped reports render them as lists.
func Build(result *matching.Result) *Insights {
	if result == nil {
		return nil
	}

	out := &Insights{
		ResumeOptimization:   []string{},
		CoverLetterPoints:    []string{},
		InterviewPreparation: []string{},
		SkillsToHighlight:    append([]string{}, result.MatchingSkills...),
		SkillsToDevelop:      firstN(result.MissingSkills, maxSkillsToDevelop),
	}

	switch {
	case result.OverallScore >= 0.8:
		out.ApplicationStrategy = StrategyStandard
	case result.OverallScore >= 0.6:
		out.ApplicationStrategy = StrategyCustomize
	default:
		out.ApplicationStrategy = StrategyReferral
	}

	if result.SkillScore < 0.7 {
		out.ResumeOptimization = append(out.ResumeOptimization, "Emphasize relevant technical skills more prominently")
	}
	if result.ExperienceScore < 0.7 {
		out.ResumeOptimization = append(out.ResumeOptimization, "Quantify achievements with specific metrics")
	}

	if result.Analysis != nil {
		for _, strength := range result.Analysis.Strengths {
			out.CoverLetterPoints = append(out.CoverLetterPoints, "Highlight: "+strength)
		}
	}

	if len(result.MissingSkills) > 0 {
		topics := strings.Join(firstN(result.MissingSkills, maxInterviewTopics), ", ")
		out.InterviewPreparation = append(out.InterviewPreparation,
			fmt.Sprintf("Prepare to discuss how you would quickly learn: %s", topics))
	}

	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}

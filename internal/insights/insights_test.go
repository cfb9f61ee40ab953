package insights

import (
	"testing"

	"github.com/spigell/job-autopilot/internal/matching"
)

func TestBuildStrongMatch(t *testing.T) {
	t.Parallel()

	result := &matching.Result{
		OverallScore:    0.91,
		SkillScore:      0.95,
		ExperienceScore: 1.0,
		MatchingSkills:  []string{"go", "docker"},
		MissingSkills:   []string{},
		Analysis: &matching.Analysis{
			Strengths: []string{
				"Excellent skill match with job requirements",
				"Experience level aligns well with position",
			},
		},
	}

	got := Build(result)

	if got.ApplicationStrategy != StrategyStandard {
		t.Errorf("ApplicationStrategy = %q, want %q", got.ApplicationStrategy, StrategyStandard)
	}
	if len(got.ResumeOptimization) != 0 {
		t.Errorf("ResumeOptimization = %v, want none", got.ResumeOptimization)
	}
	if len(got.CoverLetterPoints) != 2 {
		t.Fatalf("CoverLetterPoints = %v, want two entries", got.CoverLetterPoints)
	}
	if got.CoverLetterPoints[0] != "Highlight: Excellent skill match with job requirements" {
		t.Errorf("CoverLetterPoints[0] = %q", got.CoverLetterPoints[0])
	}
	if len(got.InterviewPreparation) != 0 {
		t.Errorf("InterviewPreparation = %v, want none", got.InterviewPreparation)
	}
	if len(got.SkillsToHighlight) != 2 {
		t.Errorf("SkillsToHighlight = %v, want matching skills", got.SkillsToHighlight)
	}
}

func TestBuildWeakMatch(t *testing.T) {
	t.Parallel()

	result := &matching.Result{
		OverallScore:    0.35,
		SkillScore:      0.2,
		ExperienceScore: 0.4,
		MatchingSkills:  []string{},
		MissingSkills:   []string{"Rust", "Kafka", "Scala", "Spark", "Flink", "Beam"},
		Analysis:        &matching.Analysis{},
	}

	got := Build(result)

	if got.ApplicationStrategy != StrategyReferral {
		t.Errorf("ApplicationStrategy = %q, want %q", got.ApplicationStrategy, StrategyReferral)
	}
	if len(got.ResumeOptimization) != 2 {
		t.Errorf("ResumeOptimization = %v, want skill and experience advice", got.ResumeOptimization)
	}

	wantPrep := "Prepare to discuss how you would quickly learn: Rust, Kafka, Scala"
	if len(got.InterviewPreparation) != 1 || got.InterviewPreparation[0] != wantPrep {
		t.Errorf("InterviewPreparation = %v, want [%q]", got.InterviewPreparation, wantPrep)
	}

	if len(got.SkillsToDevelop) != 5 {
		t.Errorf("SkillsToDevelop = %v, want the first five missing skills", got.SkillsToDevelop)
	}
	if got.SkillsToDevelop[4] != "Flink" {
		t.Errorf("SkillsToDevelop[4] = %q, want Flink", got.SkillsToDevelop[4])
	}
}

func TestBuildMediumStrategy(t *testing.T) {
	t.Parallel()

	got := Build(&matching.Result{OverallScore: 0.65, SkillScore: 0.8, ExperienceScore: 0.9})
	if got.ApplicationStrategy != StrategyCustomize {
		t.Errorf("ApplicationStrategy = %q, want %q", got.ApplicationStrategy, StrategyCustomize)
	}
}

func TestBuildNilResult(t *testing.T) {
	t.Parallel()

	if got := Build(nil); got != nil {
		t.Errorf("Build(nil) = %+v, want nil", got)
	}
}

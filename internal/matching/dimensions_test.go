package matching

import (
	"context"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
	"github.com/spigell/job-autopilot/internal/similarity"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// newLexicalMatcher builds a matcher whose scorer has no embedding
// backend, so every comparison is purely lexical.
func newLexicalMatcher(t *testing.T, params Params) *Matcher {
	t.Helper()

	scorer := similarity.NewScorer(nil, 0, zap.NewNop())

	m, err := New(scorer, params, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	return m
}

func testResume() *profile.Resume {
	return &profile.Resume{
		Contact: profile.Contact{
			Name:     "Sam Doe",
			Location: "Austin, TX",
		},
		Skills: map[string][]string{
			"languages": {"Python", "Go"},
			"tools":     {"Docker"},
		},
		Experience: []profile.Position{
			{Title: "Backend Engineer", Company: "Initech"},
		},
		Education: []profile.Education{
			{Degree: "Bachelor of Science in Computer Science"},
		},
		TotalExperienceYears: 4,
		SeniorityLevel:       "mid",
		PrimaryDomain:        "web_technologies",
	}
}

func TestExperienceScore(t *testing.T) {
	t.Parallel()

	m := newLexicalMatcher(t, Params{Weights: DefaultWeights()})

	testCases := []struct {
		name  string
		years float64
		level string
		want  float64
	}{
		{name: "within range", years: 4, level: "mid", want: 1.0},
		{name: "range lower bound", years: 0, level: "junior", want: 1.0},
		{name: "range upper bound", years: 2, level: "junior", want: 1.0},
		{name: "slightly over-qualified", years: 12, level: "senior", want: 0.9},
		{name: "far over-qualified hits floor", years: 20, level: "senior", want: 0.7},
		{name: "under-qualified", years: 1, level: "mid", want: 0.4},
		{name: "no experience for mid role", years: 0, level: "mid", want: 0.0},
		{name: "unknown level is neutral", years: 4, level: "principal", want: 0.5},
		{name: "missing level is neutral", years: 4, level: "", want: 0.5},
		{name: "level is case-insensitive", years: 6, level: "Senior", want: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resume := testResume()
			resume.TotalExperienceYears = tc.years

			got := m.experienceScore(resume, &posting.Posting{ExperienceLevel: tc.level})
			if !approx(got, tc.want) {
				t.Errorf("experienceScore(%v years, %q) = %v, want %v", tc.years, tc.level, got, tc.want)
			}
		})
	}
}

func TestEducationScore(t *testing.T) {
	t.Parallel()

	m := newLexicalMatcher(t, Params{Weights: DefaultWeights()})

	testCases := []struct {
		name     string
		required string
		degrees  []string
		want     float64
	}{
		{name: "no requirement", required: "", degrees: []string{"Bachelor of Science"}, want: 1.0},
		{name: "explicit none", required: "None", degrees: []string{"Bachelor of Science"}, want: 1.0},
		{name: "no education on record", required: "Bachelor's degree", degrees: nil, want: 0.3},
		{name: "meets requirement", required: "Bachelor's degree", degrees: []string{"Bachelor of Science in CS"}, want: 1.0},
		{name: "one level below", required: "Master's degree", degrees: []string{"Bachelor of Science"}, want: 0.8},
		{name: "far below", required: "PhD in Computer Science", degrees: []string{"High School Diploma"}, want: 0.5},
		{name: "highest degree wins", required: "Master's degree", degrees: []string{"High School Diploma", "Master of Business Administration"}, want: 1.0},
		{name: "over-qualified", required: "Associate degree", degrees: []string{"PhD in Physics"}, want: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resume := testResume()
			resume.Education = nil
			for _, degree := range tc.degrees {
				resume.Education = append(resume.Education, profile.Education{Degree: degree})
			}

			got := m.educationScore(resume, &posting.Posting{EducationRequired: tc.required})
			if !approx(got, tc.want) {
				t.Errorf("educationScore(%q, %v) = %v, want %v", tc.required, tc.degrees, got, tc.want)
			}
		})
	}
}

func TestLocationScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		remote    bool
		location  string
		preferred []string
		candidate string
		want      float64
	}{
		{name: "remote always fits", remote: true, location: "Berlin, Germany", want: 1.0},
		{name: "preferred area", location: "San Francisco, CA", preferred: []string{"san francisco"}, want: 0.9},
		{name: "preferred containment works both ways", location: "NYC", preferred: []string{"NYC metro area"}, want: 0.9},
		{name: "candidate location", location: "New York, NY", preferred: []string{"Austin"}, candidate: "New York", want: 0.8},
		{name: "no overlap", location: "Berlin, Germany", preferred: []string{"Austin"}, candidate: "Austin, TX", want: 0.3},
		{name: "posting without location", location: "", preferred: []string{"Austin"}, candidate: "Austin, TX", want: 0.3},
		{name: "blank preference is ignored", location: "Denver, CO", preferred: []string{""}, want: 0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newLexicalMatcher(t, Params{
				Weights:     DefaultWeights(),
				Preferences: Preferences{Locations: tc.preferred},
			})

			resume := testResume()
			resume.Contact.Location = tc.candidate

			job := &posting.Posting{Location: tc.location, RemoteFriendly: tc.remote}

			got := m.locationScore(resume, job)
			if !approx(got, tc.want) {
				t.Errorf("locationScore(%q) = %v, want %v", tc.location, got, tc.want)
			}
		})
	}
}

func TestCultureScore(t *testing.T) {
	t.Parallel()

	m := newLexicalMatcher(t, Params{Weights: DefaultWeights()})

	testCases := []struct {
		name      string
		domain    string
		industry  string
		companies []string
		size      string
		want      float64
	}{
		{name: "neutral base", domain: "", industry: "Agriculture", want: 0.5},
		{name: "domain industry affinity", domain: "data_science", industry: "Healthcare", want: 0.8},
		{name: "affinity is case-insensitive", domain: "data_science", industry: "technology", want: 0.8},
		{name: "startup fit without big-company history", companies: []string{"Initech"}, size: "Startup", want: 0.7},
		{name: "big-company history fits large employers", companies: []string{"Google LLC"}, size: "Large", want: 0.7},
		{name: "big-company history without large employer", companies: []string{"Google"}, size: "Startup", want: 0.5},
		{name: "bonuses cap at one", domain: "web_technologies", industry: "Technology", companies: []string{"Initech"}, size: "Small", want: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resume := testResume()
			resume.PrimaryDomain = tc.domain
			resume.Experience = nil
			for _, company := range tc.companies {
				resume.Experience = append(resume.Experience, profile.Position{Company: company})
			}

			job := &posting.Posting{Industry: tc.industry, CompanySize: tc.size}

			got := m.cultureScore(resume, job)
			if !approx(got, tc.want) {
				t.Errorf("cultureScore(domain %q, industry %q, size %q) = %v, want %v",
					tc.domain, tc.industry, tc.size, got, tc.want)
			}
		})
	}
}

func TestSalaryScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		salary    *posting.SalaryRange
		minSalary int
		want      float64
	}{
		{name: "no range is neutral", salary: nil, minSalary: 80000, want: 0.7},
		{name: "range reaches expectation", salary: &posting.SalaryRange{Min: 60000, Max: 90000}, minSalary: 80000, want: 1.0},
		{name: "range close to expectation", salary: &posting.SalaryRange{Min: 70000, Max: 75000}, minSalary: 80000, want: 0.8},
		{name: "range far below expectation", salary: &posting.SalaryRange{Min: 40000, Max: 50000}, minSalary: 80000, want: 0.3},
		{name: "fallback expectation applies", salary: &posting.SalaryRange{Min: 30000, Max: 55000}, minSalary: 0, want: 1.0},
		{name: "fallback expectation rejects low ranges", salary: &posting.SalaryRange{Min: 30000, Max: 35000}, minSalary: 0, want: 0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newLexicalMatcher(t, Params{
				Weights:     DefaultWeights(),
				Preferences: Preferences{MinSalary: tc.minSalary},
			})

			got := m.salaryScore(&posting.Posting{Salary: tc.salary})
			if !approx(got, tc.want) {
				t.Errorf("salaryScore(%+v, min %d) = %v, want %v", tc.salary, tc.minSalary, got, tc.want)
			}
		})
	}
}

func TestSkillScoreKeywordFallback(t *testing.T) {
	t.Parallel()

	m := newLexicalMatcher(t, Params{Weights: DefaultWeights()})

	testCases := []struct {
		name      string
		skills    map[string][]string
		required  []string
		preferred []string
		want      float64
	}{
		{
			name:     "full coverage",
			skills:   map[string][]string{"languages": {"Python", "Go"}, "tools": {"Docker"}},
			required: []string{"Go", "Docker"},
			want:     1.0,
		},
		{
			name:      "partial coverage counts preferred skills",
			skills:    map[string][]string{"languages": {"Python", "Go"}, "tools": {"Docker"}},
			required:  []string{"Go", "Docker", "Kubernetes"},
			preferred: []string{"AWS"},
			want:      0.5,
		},
		{
			name:     "containment matches broader phrasing",
			skills:   map[string][]string{"languages": {"Go"}},
			required: []string{"Golang"},
			want:     1.0,
		},
		{
			name:     "two of three required",
			skills:   map[string][]string{"security": {"python", "aws", "penetration testing"}},
			required: []string{"python", "aws", "kubernetes"},
			want:     2.0 / 3.0,
		},
		{
			name:     "no candidate skills",
			skills:   nil,
			required: []string{"Go"},
			want:     0.0,
		},
		{
			name:   "no job skills",
			skills: map[string][]string{"languages": {"Go"}},
			want:   0.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resume := testResume()
			resume.Skills = tc.skills

			job := &posting.Posting{RequiredSkills: tc.required, PreferredSkills: tc.preferred}

			got := m.skillScore(context.Background(), resume, job)
			if !approx(got, tc.want) {
				t.Errorf("skillScore = %v, want %v", got, tc.want)
			}
		})
	}
}

// fakeEmbedder serves fixed vectors keyed by input text.
type fakeEmbedder struct {
	vecs map[string][]float32
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vecs[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func TestSkillScoreSemanticBlend(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"Go":     {1, 0},
		"Golang": {1, 0},
	}}
	scorer := similarity.NewScorer(embedder, 0, zap.NewNop())

	m, err := New(scorer, Params{Weights: DefaultWeights()}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	resume := testResume()
	resume.Skills = map[string][]string{"languages": {"Golang"}}

	job := &posting.Posting{RequiredSkills: []string{"Go"}}

	// Lexical ratio between "go" and "golang" is 1/3, the vectors are
	// identical, and the posting lists no preferred skills.
	want := (1.0/3.0 + 1.0) / 2 * requiredSkillWeight

	got := m.skillScore(context.Background(), resume, job)
	if !approx(got, want) {
		t.Errorf("skillScore = %v, want %v", got, want)
	}
}

func TestSkillOverlap(t *testing.T) {
	t.Parallel()

	m := newLexicalMatcher(t, Params{Weights: DefaultWeights()})

	resume := testResume()
	job := &posting.Posting{
		RequiredSkills:  []string{"Go", "Rust"},
		PreferredSkills: []string{"Docker"},
	}

	matched, missing := m.skillOverlap(context.Background(), resume, job)

	if len(matched) != 2 || matched[0] != "go" || matched[1] != "docker" {
		t.Errorf("matched = %v, want [go docker]", matched)
	}
	if len(missing) != 1 || missing[0] != "Rust" {
		t.Errorf("missing = %v, want [Rust]", missing)
	}
}

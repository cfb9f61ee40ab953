package matching

import (
	"context"
	"math"
	"strings"

	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
	"github.com/spigell/job-autopilot/internal/textnorm"
)

const (
	requiredSkillWeight  = 0.8
	preferredSkillWeight = 0.2

	// fallbackMinSalary applies when preferences carry no expectation.
	fallbackMinSalary = 50000
)

// experienceLevels map posting levels onto expected year ranges.
var experienceLevels = map[string]struct{ min, max float64 }{
	"junior": {0, 2},
	"mid":    {2, 5},
	"senior": {5, 10},
	"lead":   {8, 15},
}

// educationRanks order degree tokens from high school to doctorate. The
// required level takes the first token found in the requirement text; the
// candidate level takes the highest token across all degrees.
var educationRanks = []struct {
	token string
	level int
}{
	{"high school", 1},
	{"associate", 2},
	{"bachelor", 3}, {"bs", 3}, {"ba", 3},
	{"master", 4}, {"ms", 4}, {"ma", 4}, {"mba", 4},
	{"phd", 5}, {"doctorate", 5},
}

// domainIndustries lists industries with a natural affinity for each
// candidate primary domain.
var domainIndustries = map[string][]string{
	"cybersecurity":    {"Security", "Financial Services", "Technology"},
	"data_science":     {"Technology", "Healthcare", "Finance"},
	"web_technologies": {"Technology", "E-commerce", "Media"},
}

// bigCompanies hold canonical names as produced by textnorm.
var bigCompanies = map[string]bool{
	"google":    true,
	"microsoft": true,
	"amazon":    true,
	"apple":     true,
	"meta":      true,
	"netflix":   true,
}

// skillScore rates how well the candidate covers the posting's skills.
// With a semantic backend each job skill takes its best-matching candidate
// skill; required skills dominate the blend. Without one the score is the
// fraction of job skills covered by keyword containment.
func (m *Matcher) skillScore(ctx context.Context, resume *profile.Resume, job *posting.Posting) float64 {
	candidate := resume.AllSkills()

	jobSkills := make([]string, 0, len(job.RequiredSkills)+len(job.PreferredSkills))
	jobSkills = append(jobSkills, job.RequiredSkills...)
	jobSkills = append(jobSkills, job.PreferredSkills...)

	if len(candidate) == 0 || len(jobSkills) == 0 {
		return 0
	}

	if !m.scorer.Semantic() {
		return keywordSkillMatch(candidate, jobSkills)
	}

	required := m.bestMatchMean(ctx, job.RequiredSkills, candidate)
	preferred := m.bestMatchMean(ctx, job.PreferredSkills, candidate)

	return math.Min(required*requiredSkillWeight+preferred*preferredSkillWeight, 1.0)
}

func (m *Matcher) bestMatchMean(ctx context.Context, jobSkills, candidate []string) float64 {
	if len(jobSkills) == 0 {
		return 0
	}

	var sum float64
	for _, jobSkill := range jobSkills {
		var best float64
		for _, skill := range candidate {
			if score := m.scorer.Similarity(ctx, jobSkill, skill); score > best {
				best = score
			}
		}
		sum += best
	}

	return sum / float64(len(jobSkills))
}

func keywordSkillMatch(candidate, jobSkills []string) float64 {
	if len(candidate) == 0 || len(jobSkills) == 0 {
		return 0
	}

	matches := 0
	for _, jobSkill := range jobSkills {
		jobLower := strings.ToLower(strings.TrimSpace(jobSkill))
		if jobLower == "" {
			continue
		}
		for _, skill := range candidate {
			skillLower := strings.ToLower(strings.TrimSpace(skill))
			if skillLower == "" {
				continue
			}
			if strings.Contains(jobLower, skillLower) || strings.Contains(skillLower, jobLower) {
				matches++
				break
			}
		}
	}

	return float64(matches) / float64(len(jobSkills))
}

// experienceScore compares the candidate's years against the range the
// posting's level expects. Over-qualification costs little, missing years
// cost a lot, unknown levels stay neutral.
func (m *Matcher) experienceScore(resume *profile.Resume, job *posting.Posting) float64 {
	level, ok := experienceLevels[strings.ToLower(strings.TrimSpace(job.ExperienceLevel))]
	if !ok {
		return 0.5
	}

	years := resume.TotalExperienceYears
	switch {
	case years >= level.min && years <= level.max:
		return 1.0
	case years > level.max:
		return math.Max(0.7, 1.0-(years-level.max)*0.05)
	default:
		return math.Max(0, years/level.min*0.8)
	}
}

func (m *Matcher) educationScore(resume *profile.Resume, job *posting.Posting) float64 {
	required := strings.ToLower(strings.TrimSpace(job.EducationRequired))
	if required == "" || required == "none" {
		return 1.0
	}
	if len(resume.Education) == 0 {
		return 0.3
	}

	requiredLevel := 0
	for _, rank := range educationRanks {
		if strings.Contains(required, rank.token) {
			requiredLevel = rank.level
			break
		}
	}

	candidateLevel := 0
	for _, edu := range resume.Education {
		degree := strings.ToLower(edu.Degree)
		for _, rank := range educationRanks {
			if strings.Contains(degree, rank.token) && rank.level > candidateLevel {
				candidateLevel = rank.level
			}
		}
	}

	switch {
	case candidateLevel >= requiredLevel:
		return 1.0
	case candidateLevel >= requiredLevel-1:
		return 0.8
	default:
		return 0.5
	}
}

// locationScore is 1.0 for remote-friendly postings regardless of
// geography, then degrades through preferred areas and the candidate's
// own location down to a mismatch floor.
func (m *Matcher) locationScore(resume *profile.Resume, job *posting.Posting) float64 {
	if job.RemoteFriendly {
		return 1.0
	}

	jobLocation := strings.ToLower(strings.TrimSpace(job.Location))
	if jobLocation != "" {
		for _, preferred := range m.prefs.Locations {
			preferred = strings.ToLower(strings.TrimSpace(preferred))
			if preferred == "" {
				continue
			}
			if strings.Contains(jobLocation, preferred) || strings.Contains(preferred, jobLocation) {
				return 0.9
			}
		}

		if candidate := strings.ToLower(strings.TrimSpace(resume.Contact.Location)); candidate != "" {
			if strings.Contains(jobLocation, candidate) || strings.Contains(candidate, jobLocation) {
				return 0.8
			}
		}
	}

	return 0.3
}

func (m *Matcher) cultureScore(resume *profile.Resume, job *posting.Posting) float64 {
	score := 0.5

	if industries, ok := domainIndustries[resume.PrimaryDomain]; ok {
		for _, industry := range industries {
			if strings.EqualFold(job.Industry, industry) {
				score += 0.3
				break
			}
		}
	}

	if len(resume.Experience) > 0 {
		hasBigCompanyExp := false
		for _, exp := range resume.Experience {
			if bigCompanies[textnorm.NormalizeCompany(exp.Company)] {
				hasBigCompanyExp = true
				break
			}
		}

		switch {
		case hasBigCompanyExp && strings.EqualFold(job.CompanySize, "large"):
			score += 0.2
		case !hasBigCompanyExp && (strings.EqualFold(job.CompanySize, "startup") || strings.EqualFold(job.CompanySize, "small")):
			score += 0.2
		}
	}

	return math.Min(score, 1.0)
}

// salaryScore stays neutral when the posting does not state a range.
func (m *Matcher) salaryScore(job *posting.Posting) float64 {
	if job.Salary == nil {
		return 0.7
	}

	minSalary := float64(m.prefs.MinSalary)
	if minSalary <= 0 {
		minSalary = fallbackMinSalary
	}

	switch {
	case float64(job.Salary.Max) >= minSalary:
		return 1.0
	case float64(job.Salary.Min) >= minSalary*0.8:
		return 0.8
	default:
		return 0.3
	}
}

// skillOverlap returns the job skills the candidate covers (lowercased)
// and the required skills they do not. Both slices are non-nil so report
// dumps render them as lists.
func (m *Matcher) skillOverlap(ctx context.Context, resume *profile.Resume, job *posting.Posting) (matched, missing []string) {
	matched = []string{}
	missing = []string{}

	candidate := resume.AllSkills()

	jobSkills := make([]string, 0, len(job.RequiredSkills)+len(job.PreferredSkills))
	jobSkills = append(jobSkills, job.RequiredSkills...)
	jobSkills = append(jobSkills, job.PreferredSkills...)

	for _, jobSkill := range jobSkills {
		if m.skillCovered(ctx, jobSkill, candidate) {
			matched = append(matched, strings.ToLower(jobSkill))
		}
	}

	for _, skill := range job.RequiredSkills {
		if !m.skillCovered(ctx, skill, candidate) {
			missing = append(missing, skill)
		}
	}

	return matched, missing
}

// skillCovered treats a job skill as covered on direct containment or when
// the similarity scorer puts a candidate skill above the matching threshold.
func (m *Matcher) skillCovered(ctx context.Context, jobSkill string, candidate []string) bool {
	jobLower := strings.ToLower(strings.TrimSpace(jobSkill))
	if jobLower == "" {
		return false
	}

	for _, skill := range candidate {
		skillLower := strings.ToLower(strings.TrimSpace(skill))
		if skillLower == "" {
			continue
		}
		if strings.Contains(jobLower, skillLower) || strings.Contains(skillLower, jobLower) {
			return true
		}
		if m.scorer.Similarity(ctx, jobSkill, skill) >= m.skillThreshold {
			return true
		}
	}

	return false
}

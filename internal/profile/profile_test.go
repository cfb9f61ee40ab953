package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	payload := `{
		"contact_info": {"name": "Dana Reyes", "email": "dana@example.com", "phone": "555-0100", "location": "Austin, TX"},
		"summary": "Security engineer with cloud focus.",
		"skills": {
			"programming_languages": ["Python", "Go"],
			"cloud_platforms": ["AWS"]
		},
		"work_experience": [
			{
				"title": "Security Engineer",
				"company": "Initech",
				"location": "Austin, TX",
				"start_date": "2019-03",
				"end_date": "2023-06",
				"duration_months": 51,
				"responsibilities": ["Ran internal pentests"],
				"achievements": ["Cut incident response time by 40%"],
				"skills_used": ["Python", "AWS"]
			}
		],
		"education": [
			{"degree": "Bachelor of Science", "field": "Computer Science", "institution": "UT Austin", "graduation_year": "2018"}
		],
		"certifications": [
			{"name": "OSCP", "issuer": "OffSec"}
		],
		"total_experience_years": 5.5,
		"seniority_level": "senior",
		"primary_domain": "cybersecurity",
		"skill_confidence_scores": {"python": 0.9}
	}`

	path := filepath.Join(t.TempDir(), "resume.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	resume, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if resume.Contact.Name != "Dana Reyes" {
		t.Errorf("unexpected contact name: %q", resume.Contact.Name)
	}
	if resume.TotalExperienceYears != 5.5 {
		t.Errorf("unexpected experience years: %v", resume.TotalExperienceYears)
	}
	if len(resume.Experience) != 1 || resume.Experience[0].DurationMonths != 51 {
		t.Errorf("unexpected work experience: %+v", resume.Experience)
	}
	if resume.SkillConfidence["python"] != 0.9 {
		t.Errorf("unexpected skill confidence: %+v", resume.SkillConfidence)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestAllSkills(t *testing.T) {
	t.Parallel()

	resume := &Resume{Skills: map[string][]string{
		"web_technologies":      {"React"},
		"programming_languages": {"Python", "Go"},
	}}

	got := resume.AllSkills()
	want := []string{"Python", "Go", "React"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AllSkills = %v, want %v", got, want)
	}

	var nilResume *Resume
	if skills := nilResume.AllSkills(); skills != nil {
		t.Fatalf("expected nil skills for nil resume, got %v", skills)
	}
}

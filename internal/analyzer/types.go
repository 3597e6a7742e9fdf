// Package analyzer screens one resume against a deconstructed job description by chaining
// LLM calls (skill match, holistic parse, experience calculation, quality assessment) and
// combining their outputs with a deterministic weighted scorer.
package analyzer

import "strings"

type Seniority string

const (
	SeniorityEntry  Seniority = "entry"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
)

// ParseSeniority maps the model's free-text seniority ("Senior", "Entry-level",
// "Internship", ...) onto one of the three presets. Anything unrecognised is mid.
func ParseSeniority(s string) Seniority {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "senior"):
		return SenioritySenior
	case strings.Contains(s, "entry"), strings.Contains(s, "junior"), strings.Contains(s, "intern"):
		return SeniorityEntry
	default:
		return SeniorityMid
	}
}

// RequirementProfile is produced once per job and shared read-only by every resume
// pipeline of a batch.
type RequirementProfile struct {
	JobTitle                string    `json:"job_title"`
	SeniorityLevel          Seniority `json:"seniority_level"`
	RequiredExperienceYears int       `json:"required_experience_years"`
	MustHaveSkills          []string  `json:"must_have_skills"`
	NiceToHaveSkills        []string  `json:"nice_to_have_skills"`
}

type SkillMatch struct {
	Skill            string `json:"skill"`
	ProficiencyLevel int    `json:"proficiency_level"`
	Evidence         string `json:"evidence_from_resume"`
}

type SkillAnalysis struct {
	MustHaveMatches   []SkillMatch `json:"must_have_matches"`
	NiceToHaveMatches []SkillMatch `json:"nice_to_have_matches"`
	ExecutiveSummary  string       `json:"executive_summary"`
}

type ExperienceRecord struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type CandidateProfile struct {
	FullName                      string             `json:"full_name"`
	Contact                       string             `json:"contact_info"`
	ExperienceAndProjects         []ExperienceRecord `json:"experience_and_projects"`
	CertificationsAndAwards       []string           `json:"certifications_and_awards"`
	LeadershipAndExtracurriculars []string           `json:"leadership_and_extracurriculars"`
}

type QualityAssessment struct {
	QualityScore float64  `json:"quality_score"`
	RedFlags     []string `json:"red_flags"`
}

type ExperienceMatch struct {
	RequiredYears            int     `json:"required_years"`
	CalculatedCandidateYears float64 `json:"calculated_candidate_years"`
	IsSufficient             bool    `json:"is_sufficient"`
}

type ScoreResult struct {
	UnadjustedScore int `json:"unadjusted_score"`
	FinalScore      int `json:"final_score"`
}

// Outcome is everything one successful resume pipeline produced.
type Outcome struct {
	Filename   string            `json:"filename"`
	RawText    string            `json:"-"`
	Skills     SkillAnalysis     `json:"skill_match_analysis"`
	Experience ExperienceMatch   `json:"experience_match_analysis"`
	Candidate  CandidateProfile  `json:"structured_resume"`
	Quality    QualityAssessment `json:"quality_assessment"`
	Score      ScoreResult       `json:"score"`
}

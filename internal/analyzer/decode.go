package analyzer

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeRequirementProfile reads a deconstructed JD. Missing or mistyped fields fall back
// to zero values.
func DecodeRequirementProfile(obj gjson.Result) RequirementProfile {
	years := coerceInt(obj.Get("required_experience_years"))
	if years < 0 {
		years = 0
	}
	return RequirementProfile{
		JobTitle:                strings.TrimSpace(obj.Get("job_title").String()),
		SeniorityLevel:          ParseSeniority(obj.Get("seniority_level").String()),
		RequiredExperienceYears: years,
		MustHaveSkills:          stringList(obj.Get("must_have_skills")),
		NiceToHaveSkills:        stringList(obj.Get("nice_to_have_skills")),
	}
}

// DecodeSkillAnalysis accepts the matches either nested under "skill_match_analysis" or at
// the top level.
func DecodeSkillAnalysis(obj gjson.Result) SkillAnalysis {
	matches := obj.Get("skill_match_analysis")
	if !matches.IsObject() {
		matches = obj
	}
	summary := strings.TrimSpace(obj.Get("executive_summary").String())
	if summary == "" {
		summary = "No summary available"
	}
	return SkillAnalysis{
		MustHaveMatches:   skillMatches(matches.Get("must_have_matches")),
		NiceToHaveMatches: skillMatches(matches.Get("nice_to_have_matches")),
		ExecutiveSummary:  summary,
	}
}

func DecodeCandidateProfile(obj gjson.Result) CandidateProfile {
	var records []ExperienceRecord
	obj.Get("experience_and_projects").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			records = append(records, ExperienceRecord{
				Title:    v.Get("title").String(),
				Duration: v.Get("duration").String(),
			})
		}
		return true
	})
	return CandidateProfile{
		FullName:                      strings.TrimSpace(obj.Get("full_name").String()),
		Contact:                       strings.TrimSpace(obj.Get("contact_info").String()),
		ExperienceAndProjects:         records,
		CertificationsAndAwards:       stringList(obj.Get("certifications_and_awards")),
		LeadershipAndExtracurriculars: stringList(obj.Get("leadership_and_extracurriculars")),
	}
}

// DecodeQualityAssessment reports ok=false when the reply has no usable quality_score.
func DecodeQualityAssessment(obj gjson.Result) (QualityAssessment, bool) {
	score, ok := coerceFloat(obj.Get("quality_score"))
	return QualityAssessment{
		QualityScore: score,
		RedFlags:     stringList(obj.Get("red_flags")),
	}, ok
}

// CoerceProficiency turns whatever the model sent as a proficiency level into an int in
// [0, MaxProficiency]. Strings that are not numbers, null and objects become 0.
func CoerceProficiency(v gjson.Result) int {
	level := coerceInt(v)
	if level < 0 {
		return 0
	}
	if level > MaxProficiency {
		return MaxProficiency
	}
	return level
}

func skillMatches(arr gjson.Result) []SkillMatch {
	var out []SkillMatch
	arr.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		out = append(out, SkillMatch{
			Skill:            v.Get("skill").String(),
			ProficiencyLevel: CoerceProficiency(v.Get("proficiency_level")),
			Evidence:         v.Get("evidence_from_resume").String(),
		})
		return true
	})
	return out
}

func stringList(arr gjson.Result) []string {
	out := []string{}
	arr.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" && v.Type != gjson.JSON {
			out = append(out, s)
		}
		return true
	})
	return out
}

func coerceInt(v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0
		}
		return int(v.Num)
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return 0
}

func coerceFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0, false
		}
		return v.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

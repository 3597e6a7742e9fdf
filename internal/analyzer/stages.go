package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"
)

// DeconstructJD runs once per job and turns the description into the requirement profile
// every resume of the batch is scored against.
func (p *Pipeline) DeconstructJD(ctx context.Context, jobDescription string) (RequirementProfile, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return RequirementProfile{}, &StageError{Stage: StageJDDeconstruct, Err: errors.New("job description is empty")}
	}
	obj, err := p.gateway.Call(ctx, jdDeconstructionPrompt(jobDescription), p.cfg.StructuringModel)
	if err != nil {
		return RequirementProfile{}, &StageError{Stage: StageJDDeconstruct, Err: err}
	}
	return DecodeRequirementProfile(obj), nil
}

func (p *Pipeline) MatchSkills(ctx context.Context, req RequirementProfile, resumeText string) (SkillAnalysis, error) {
	skills, err := json.MarshalIndent(map[string][]string{
		"must_have_skills":    nonNil(req.MustHaveSkills),
		"nice_to_have_skills": nonNil(req.NiceToHaveSkills),
	}, "", "  ")
	if err != nil {
		return SkillAnalysis{}, err
	}
	obj, err := p.gateway.Call(ctx, skillMatchPrompt(string(skills), resumeText), p.cfg.AnalysisModel)
	if err != nil {
		return SkillAnalysis{}, err
	}
	return DecodeSkillAnalysis(obj), nil
}

func (p *Pipeline) ParseHolistic(ctx context.Context, resumeText string) (CandidateProfile, error) {
	obj, err := p.gateway.Call(ctx, holisticParsePrompt(resumeText), p.cfg.StructuringModel)
	if err != nil {
		return CandidateProfile{}, err
	}
	return DecodeCandidateProfile(obj), nil
}

// CalculateExperience asks the model to total the durations. An empty list is 0 years
// without a call.
func (p *Pipeline) CalculateExperience(ctx context.Context, records []ExperienceRecord) (float64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	list, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}
	today := p.cfg.Now().Format("January 2006")
	obj, err := p.gateway.Call(ctx, experiencePrompt(string(list), today), p.cfg.StructuringModel)
	if err != nil {
		return 0, err
	}
	years, ok := coerceFloat(obj.Get("total_experience_years"))
	if !ok {
		return 0, fmt.Errorf("total_experience_years missing or not a number: %s", obj.Get("total_experience_years").Raw)
	}
	switch {
	case years < 0:
		years = 0
	case years > MaxExperienceYears:
		log.Printf("warning: implausible total_experience_years %.2f, capping at %d", years, MaxExperienceYears)
		years = MaxExperienceYears
	}
	return years, nil
}

func (p *Pipeline) AssessQuality(ctx context.Context, resumeText string) (QualityAssessment, error) {
	obj, err := p.gateway.Call(ctx, qualityPrompt(resumeText), p.cfg.StructuringModel)
	if err != nil {
		return QualityAssessment{}, err
	}
	qa, ok := DecodeQualityAssessment(obj)
	if !ok {
		return QualityAssessment{}, fmt.Errorf("quality_score missing or not a number: %s", obj.Get("quality_score").Raw)
	}
	return qa, nil
}

// RawJSON re-serialises a profile for storage.
func RawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

// DecodeStoredRequirements reads a requirement profile back from its stored JSON.
func DecodeStoredRequirements(raw []byte) (RequirementProfile, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return RequirementProfile{}, false
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return RequirementProfile{}, false
	}
	return DecodeRequirementProfile(obj), true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

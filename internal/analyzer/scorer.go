package analyzer

import "math"

const (
	MaxProficiency     = 3
	ExperienceRatioCap = 1.2

	// MaxExperienceYears caps the experience total reported by the model.
	MaxExperienceYears = 60
)

// WeightPreset holds the tunable scoring weights for one seniority band.
type WeightPreset struct {
	MustHave      float64
	NiceToHave    float64
	Experience    float64
	Certification float64
	Leadership    float64
}

var WeightPresets = map[Seniority]WeightPreset{
	SenioritySenior: {MustHave: 5, NiceToHave: 2, Experience: 20, Certification: 1, Leadership: 3},
	SeniorityEntry:  {MustHave: 3, NiceToHave: 4, Experience: 5, Certification: 5, Leadership: 5},
	SeniorityMid:    {MustHave: 4, NiceToHave: 3, Experience: 8, Certification: 3, Leadership: 2},
}

func PresetFor(s Seniority) WeightPreset {
	if p, ok := WeightPresets[s]; ok {
		return p
	}
	return WeightPresets[SeniorityMid]
}

// Score combines skill levels, experience and bonus items into an integer in [0, 100].
// It is pure: the same inputs always give the same result.
func Score(skills SkillAnalysis, req RequirementProfile, candidate CandidateProfile, candidateYears float64) int {
	certs := len(candidate.CertificationsAndAwards)
	leads := len(candidate.LeadershipAndExtracurriculars)
	if len(req.MustHaveSkills) == 0 && len(req.NiceToHaveSkills) == 0 &&
		req.RequiredExperienceYears <= 0 && certs == 0 && leads == 0 {
		return 0
	}

	w := PresetFor(req.SeniorityLevel)
	var score, maxScore float64

	s, m := skillTerm(skills.MustHaveMatches, len(req.MustHaveSkills), w.MustHave)
	score, maxScore = score+s, maxScore+m
	s, m = skillTerm(skills.NiceToHaveMatches, len(req.NiceToHaveSkills), w.NiceToHave)
	score, maxScore = score+s, maxScore+m

	maxScore += w.Experience
	if req.RequiredExperienceYears > 0 {
		score += w.Experience * experienceRatio(candidateYears, req.RequiredExperienceYears)
	} else {
		score += w.Experience
	}

	bonus := float64(certs)*w.Certification + float64(leads)*w.Leadership
	score += bonus
	maxScore += bonus

	if maxScore == 0 {
		return 0
	}
	return clampScore(int(math.Floor(score / maxScore * 100)))
}

// ApplyQuality scales the unadjusted score by the quality multiplier. Multipliers outside
// [0, 1] are clamped and NaN counts as 1.
func ApplyQuality(unadjusted int, multiplier float64) int {
	switch {
	case math.IsNaN(multiplier):
		multiplier = 1
	case multiplier < 0:
		multiplier = 0
	case multiplier > 1:
		multiplier = 1
	}
	return clampScore(int(math.Floor(float64(unadjusted) * multiplier)))
}

// skillTerm sums every clamped match level, then caps the category at its maximum so
// invented extra matches cannot push it further. The result does not depend on match order.
func skillTerm(matches []SkillMatch, required int, weight float64) (score, maxScore float64) {
	maxScore = float64(required) * weight * MaxProficiency
	for _, match := range matches {
		level := match.ProficiencyLevel
		if level < 0 {
			level = 0
		} else if level > MaxProficiency {
			level = MaxProficiency
		}
		score += weight * float64(level)
	}
	return math.Min(score, maxScore), maxScore
}

func experienceRatio(candidateYears float64, requiredYears int) float64 {
	if math.IsNaN(candidateYears) || candidateYears <= 0 {
		return 0
	}
	return math.Min(candidateYears/float64(requiredYears), ExperienceRatioCap)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

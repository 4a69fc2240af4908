// Package scoring compares extracted CV signals with JD requirements and
// produces an explainable fit score.
package scoring

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/similarity"
)

type Dimension string

const (
	DimensionSkills         Dimension = "skills"
	DimensionExperience     Dimension = "experience"
	DimensionEducation      Dimension = "education"
	DimensionProgression    Dimension = "progression"
	DimensionCertifications Dimension = "certifications"
)

// Dimensions lists every sub-score in a fixed order.
var Dimensions = []Dimension{
	DimensionSkills,
	DimensionExperience,
	DimensionEducation,
	DimensionProgression,
	DimensionCertifications,
}

var weights = map[Dimension]float64{
	DimensionSkills:         0.35,
	DimensionExperience:     0.25,
	DimensionEducation:      0.15,
	DimensionProgression:    0.10,
	DimensionCertifications: 0.10,
}

const (
	// Neutral is used for every dimension that has nothing to compare.
	Neutral = 50.0

	MustHavePenalty = 10.0
	RedFlagPenalty  = 5.0

	preferredBonus    = 10.0
	regressionPenalty = 20.0
	jobChangePenalty  = 20.0
)

// Weight returns the share of a dimension in the final score.
func Weight(d Dimension) float64 {
	return weights[d]
}

type MatchKind string

const (
	MatchRequired  MatchKind = "required"
	MatchPreferred MatchKind = "preferred"
	MatchMustHave  MatchKind = "must_have"
)

type SkillMatch struct {
	JDSkill string    `json:"jd_skill"`
	CVSkill string    `json:"cv_skill"`
	Score   float64   `json:"score"`
	Kind    MatchKind `json:"kind"`
}

// Breakdown shows how the final score was assembled.
type Breakdown struct {
	Weighted        float64 `json:"weighted"`
	MustHavePenalty float64 `json:"must_have_penalty"`
	RedFlagPenalty  float64 `json:"red_flag_penalty"`
	// Raw is the score before clamping and rounding.
	Raw float64 `json:"raw"`
}

type MatchResult struct {
	CandidateName   string                 `json:"candidate_name"`
	Order           int                    `json:"order"`
	MatchedSkills   []SkillMatch           `json:"matched_skills"`
	MissingSkills   []string               `json:"missing_skills"`
	MissingMustHave []string               `json:"missing_must_have"`
	SubScores       map[Dimension]float64  `json:"sub_scores"`
	Breakdown       Breakdown              `json:"breakdown"`
	FinalScore      float64                `json:"final_score"`
	Verdict         Verdict                `json:"verdict"`
	RedFlags        []profile.RedFlagKind  `json:"red_flags"`
	Recommendation  string                 `json:"recommendation"`
	Remarks         string                 `json:"remarks"`
	ExperienceNote  string                 `json:"experience_note,omitempty"`
	Strengths       []string               `json:"strengths"`
	Weaknesses      []string               `json:"weaknesses"`
	Achievements    []string               `json:"achievements"`
	Backend         string                 `json:"similarity_backend"`
	Profile         profile.ProfileSignals `json:"profile"`
}

// Engine scores candidates with one similarity backend. It holds no mutable
// state and may be shared between goroutines.
type Engine struct {
	backend similarity.Backend
}

func New(backend similarity.Backend) *Engine {
	if backend == nil {
		backend = similarity.Lexical{}
	}
	return &Engine{backend: backend}
}

func (e *Engine) Backend() similarity.Backend {
	return e.backend
}

// Score never fails; absent signals fall back to neutral sub-scores.
func (e *Engine) Score(name string, job profile.JobRequirements, p profile.ProfileSignals) MatchResult {
	res := MatchResult{
		CandidateName:   name,
		MatchedSkills:   []SkillMatch{},
		MissingSkills:   []string{},
		MissingMustHave: []string{},
		SubScores:       make(map[Dimension]float64, len(Dimensions)),
		RedFlags:        profile.SortedFlags(p.RedFlags),
		Achievements:    append([]string{}, p.Achievements...),
		Backend:         e.backend.Name(),
		Profile:         p,
	}

	res.SubScores[DimensionSkills] = e.scoreSkills(job, p, &res)
	res.SubScores[DimensionExperience] = scoreExperience(job.MinExperienceYears, p.ExperienceYears)
	res.SubScores[DimensionEducation] = scoreEducation(job, p)
	res.SubScores[DimensionProgression] = scoreProgression(p)
	res.SubScores[DimensionCertifications] = scoreCertifications(job.RequiredCertifications, p.Certifications)

	res.Breakdown, res.FinalScore = Final(res.SubScores, len(res.MissingMustHave), len(res.RedFlags))
	res.Verdict = VerdictFor(res.FinalScore)
	res.Recommendation = res.Verdict.Recommendation()
	res.ExperienceNote = experienceNote(job.MinExperienceYears, p.ExperienceYears)
	res.Strengths = strengths(job, p, res)
	res.Weaknesses = weaknesses(p, res)
	res.Remarks = remarks(res)

	return res
}

// Final combines sub-scores and penalties into the clamped score rounded to
// two decimals. Missing dimensions count as zero.
func Final(sub map[Dimension]float64, missingMustHave, redFlags int) (Breakdown, float64) {
	var b Breakdown
	for _, d := range Dimensions {
		b.Weighted += weights[d] * sub[d]
	}
	b.MustHavePenalty = MustHavePenalty * float64(missingMustHave)
	b.RedFlagPenalty = RedFlagPenalty * float64(redFlags)
	b.Raw = b.Weighted - b.MustHavePenalty - b.RedFlagPenalty

	return b, round2(clamp(b.Raw, 0, 100))
}

func (e *Engine) scoreSkills(job profile.JobRequirements, p profile.ProfileSignals, res *MatchResult) float64 {
	matchedBy := make(map[string]struct{})

	matchedRequired := 0
	for _, skill := range job.RequiredSkills {
		if m, ok := similarity.BestMatch(e.backend, skill, p.Skills); ok {
			matchedRequired++
			matchedBy[skill] = struct{}{}
			res.MatchedSkills = append(res.MatchedSkills, SkillMatch{JDSkill: skill, CVSkill: m.Candidate, Score: m.Score, Kind: MatchRequired})
			continue
		}
		res.MissingSkills = append(res.MissingSkills, skill)
	}

	matchedPreferred := 0
	for _, skill := range job.PreferredSkills {
		if m, ok := similarity.BestMatch(e.backend, skill, p.Skills); ok {
			matchedPreferred++
			matchedBy[skill] = struct{}{}
			res.MatchedSkills = append(res.MatchedSkills, SkillMatch{JDSkill: skill, CVSkill: m.Candidate, Score: m.Score, Kind: MatchPreferred})
		}
	}

	for _, skill := range job.MustHaveSkills {
		m, ok := similarity.BestMatch(e.backend, skill, p.Skills)
		if !ok {
			res.MissingMustHave = append(res.MissingMustHave, skill)
			continue
		}
		if _, seen := matchedBy[skill]; !seen {
			res.MatchedSkills = append(res.MatchedSkills, SkillMatch{JDSkill: skill, CVSkill: m.Candidate, Score: m.Score, Kind: MatchMustHave})
		}
	}

	score := Neutral
	if n := len(job.RequiredSkills); n > 0 {
		score = float64(matchedRequired) / float64(n) * 100
	}
	if n := len(job.PreferredSkills); n > 0 {
		score += float64(matchedPreferred) / float64(n) * preferredBonus
	}
	return math.Min(score, 100)
}

func scoreExperience(minYears *int, years *float64) float64 {
	if minYears == nil || years == nil {
		return Neutral
	}
	if *minYears <= 0 || *years >= float64(*minYears) {
		return 100
	}
	return clamp(*years/float64(*minYears)*100, 0, 100)
}

func scoreEducation(job profile.JobRequirements, p profile.ProfileSignals) float64 {
	if job.MinDegree == profile.DegreeNone {
		return Neutral
	}

	best, ok := p.HighestDegree()
	if !ok {
		return 0
	}

	required := job.MinDegree.Level()
	switch level := best.Degree.Level(); {
	case level >= required:
		if len(job.DegreeFields) == 0 {
			return 100
		}
		for _, e := range p.Education {
			if e.Degree.Level() >= required && fieldMatches(e.Field, job.DegreeFields) {
				return 100
			}
		}
		return 80
	case level == required-1:
		return 60
	default:
		return 30
	}
}

func fieldMatches(field string, wanted []string) bool {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" {
		return false
	}
	for _, w := range wanted {
		if strings.Contains(field, w) || strings.Contains(w, field) {
			return true
		}
	}
	return false
}

// scoreProgression starts from full marks and deducts for every step down in
// seniority between consecutive roles and for frequent job changes.
func scoreProgression(p profile.ProfileSignals) float64 {
	score := 100.0
	score -= regressionPenalty * float64(regressions(p.Roles))
	for _, f := range p.RedFlags {
		if f == profile.RedFlagFrequentJobChange {
			score -= jobChangePenalty
			break
		}
	}
	return math.Max(score, 0)
}

func chronological(roles []profile.Role) []profile.Role {
	out := append([]profile.Role(nil), roles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// regressions counts drops in seniority between consecutive roles with a known level.
func regressions(roles []profile.Role) int {
	count, prev := 0, 0
	for _, r := range chronological(roles) {
		rank := r.Seniority.Rank()
		if rank == 0 {
			continue
		}
		if prev != 0 && rank < prev {
			count++
		}
		prev = rank
	}
	return count
}

func scoreCertifications(required, held []string) float64 {
	if len(required) == 0 {
		return Neutral
	}
	for _, c := range held {
		if slices.Contains(required, c) {
			return 100
		}
	}
	if len(held) > 0 {
		return Neutral
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package scoring

import (
	"math"
	"sort"
)

// Rank orders results by final score, highest first. Equal scores keep their
// relative order, so callers pass results in submission order.
func Rank(results []MatchResult) []MatchResult {
	out := append([]MatchResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}

type Summary struct {
	TotalCandidates   int     `json:"total_candidates"`
	AverageScore      float64 `json:"avg_fit_score"`
	TopCandidate      string  `json:"top_candidate,omitempty"`
	TopScore          float64 `json:"top_score"`
	CandidatesAbove75 int     `json:"candidates_above_75"`
	CandidatesAbove50 int     `json:"candidates_above_50"`
}

// Summarize expects ranked results.
func Summarize(ranked []MatchResult) Summary {
	s := Summary{TotalCandidates: len(ranked)}
	if len(ranked) == 0 {
		return s
	}

	var total float64
	for _, r := range ranked {
		total += r.FinalScore
		if r.FinalScore >= 75 {
			s.CandidatesAbove75++
		}
		if r.FinalScore >= 50 {
			s.CandidatesAbove50++
		}
	}
	s.AverageScore = math.Round(total/float64(len(ranked))*100) / 100
	s.TopCandidate = ranked[0].CandidateName
	s.TopScore = ranked[0].FinalScore

	return s
}

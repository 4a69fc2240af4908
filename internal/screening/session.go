package screening

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/scoring"
)

type SkippedCandidate struct {
	Name   string `json:"name"`
	Order  int    `json:"order"`
	Reason string `json:"reason"`
}

// Session is the outcome of one screening run. It is not modified after it
// has been stored.
type Session struct {
	ID        string                  `json:"id"`
	Job       profile.JobRequirements `json:"job"`
	Results   []scoring.MatchResult   `json:"results"`
	Skipped   []SkippedCandidate      `json:"skipped"`
	Summary   scoring.Summary         `json:"summary"`
	Backend   string                  `json:"similarity_backend"`
	CreatedAt time.Time               `json:"created_at"`
}

// Candidate finds a scored candidate by name.
func (s *Session) Candidate(name string) (scoring.MatchResult, bool) {
	for _, r := range s.Results {
		if r.CandidateName == name {
			return r, true
		}
	}
	return scoring.MatchResult{}, false
}

func (s *Session) Names() []string {
	out := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		out = append(out, r.CandidateName)
	}
	return out
}

// DumpToTmpFile writes the session as indented JSON and returns the file name.
func (s *Session) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "session_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return file.Name(), nil
}

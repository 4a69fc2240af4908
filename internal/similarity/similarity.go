// Package similarity scores how close two skill names are. A backend is
// chosen once at startup and shared read-only by every screening run.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/skills"
)

var ErrBackendUnavailable = errors.New("similarity backend unavailable")

// Backend scores skill pairs in [0, 1]. Implementations are safe for concurrent use.
type Backend interface {
	Name() string
	// Threshold is the lowest score that counts as a match.
	Threshold() float64
	Similarity(a, b string) float64
}

type Match struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// BestMatch returns the candidate closest to target when its score reaches the
// backend threshold. Ties resolve to the lexicographically first candidate.
func BestMatch(b Backend, target string, candidates []string) (Match, bool) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best := Match{Score: -1}
	for _, c := range sorted {
		if score := b.Similarity(target, c); score > best.Score {
			best = Match{Candidate: c, Score: score}
		}
	}

	if best.Score < 0 || best.Score < b.Threshold() {
		return Match{}, false
	}
	return best, true
}

// Lexical matches through the synonym taxonomy.
type Lexical struct{}

func (Lexical) Name() string { return "lexical" }

func (Lexical) Threshold() float64 { return 1.0 }

// Similarity is 1 for the same synonym group, 0.5 when one name contains the
// other and 0 otherwise.
func (Lexical) Similarity(a, b string) float64 {
	na, nb := skills.Normalize(a), skills.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if skills.SameGroup(na, nb) {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.5
	}
	return 0
}

// Embedding compares unit vectors computed once for the skill vocabulary.
// Pairs outside the vocabulary are scored lexically.
type Embedding struct {
	model    string
	vectors  map[string][]float64
	fallback Lexical
}

// NewEmbedding embeds every vocabulary entry up front.
func NewEmbedding(ctx context.Context, embedder ai.Embedder, vocabulary []string) (*Embedding, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ErrBackendUnavailable)
	}

	terms := make([]string, 0, len(vocabulary))
	seen := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		c := skills.Canonicalize(v)
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		terms = append(terms, c)
	}

	raw, err := embedder.Embed(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if len(raw) != len(terms) {
		return nil, fmt.Errorf("%w: got %d vectors for %d terms", ErrBackendUnavailable, len(raw), len(terms))
	}

	vectors := make(map[string][]float64, len(terms))
	for i, term := range terms {
		if unit := normalize(raw[i]); unit != nil {
			vectors[term] = unit
		}
	}

	return &Embedding{model: embedder.Model(), vectors: vectors}, nil
}

func (e *Embedding) Name() string { return "embedding" }

func (e *Embedding) Threshold() float64 { return 0.6 }

func (e *Embedding) Model() string { return e.model }

func (e *Embedding) Similarity(a, b string) float64 {
	ca, cb := skills.Canonicalize(a), skills.Canonicalize(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}

	va, okA := e.vectors[ca]
	vb, okB := e.vectors[cb]
	if !okA || !okB {
		return e.fallback.Similarity(a, b)
	}

	var dot float64
	for i := range va {
		dot += va[i] * vb[i]
	}
	return clamp01(dot)
}

func normalize(v []float32) []float64 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeEmbedding Mode = "embedding"
	ModeLexical   Mode = "lexical"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeEmbedding, ModeLexical:
		return m, nil
	default:
		return "", fmt.Errorf("unknown similarity backend %q", s)
	}
}

// Select builds the backend for the process. In auto mode a failing embedder
// degrades to the lexical backend; a forced embedding mode returns
// ErrBackendUnavailable instead.
func Select(ctx context.Context, mode Mode, embedder ai.Embedder, log *zap.Logger) (Backend, error) {
	log = logger.WithFields(log)

	switch mode {
	case ModeLexical:
		return Lexical{}, nil
	case ModeEmbedding, ModeAuto, "":
	default:
		return nil, fmt.Errorf("unknown similarity backend %q", mode)
	}

	backend, err := NewEmbedding(ctx, embedder, skills.Vocabulary())
	if err == nil {
		log.Info("similarity backend ready",
			zap.String(logger.FieldBackend, backend.Name()),
			zap.String(logger.FieldModel, backend.Model()),
			zap.Int("vocabulary", len(backend.vectors)),
		)
		return backend, nil
	}

	if mode == ModeEmbedding {
		return nil, err
	}

	log.Warn("falling back to lexical similarity", zap.Error(err))
	return Lexical{}, nil
}

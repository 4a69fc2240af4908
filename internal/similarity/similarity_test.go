package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-screener/internal/skills"
)

// stubEmbedder gives every term its own axis unless an override is set.
type stubEmbedder struct {
	overrides map[string][]float32
	err       error
	calls     int
}

func (s *stubEmbedder) Model() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.overrides[t]; ok {
			out[i] = v
			continue
		}
		v := make([]float32, len(texts)+1)
		v[i] = 1
		out[i] = v
	}
	return out, nil
}

func axis(n, i int, scale float32) []float32 {
	v := make([]float32, n)
	v[i] = scale
	return v
}

func newStubEmbedding(t *testing.T) *Embedding {
	t.Helper()

	vocab := []string{"docker", "kubernetes", "python"}
	k8s := axis(4, 0, 0.8)
	k8s[1] = 0.6

	e, err := NewEmbedding(context.Background(), &stubEmbedder{overrides: map[string][]float32{
		"docker":     axis(4, 0, 1),
		"kubernetes": k8s,
		"python":     axis(4, 2, 3),
	}}, vocab)
	require.NoError(t, err)
	return e
}

func TestLexicalSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{a: "python", b: "python", want: 1},
		{a: "Django", b: "python", want: 1},
		{a: "k8s", b: "kubernetes", want: 1},
		{a: "docker", b: "kubernetes", want: 0},
		{a: "react native", b: "react", want: 0.5},
		{a: "", b: "python", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Lexical{}.Similarity(tt.a, tt.b))
			assert.Equal(t, tt.want, Lexical{}.Similarity(tt.b, tt.a))
		})
	}
}

func TestLexicalSynonymClosure(t *testing.T) {
	for _, canonical := range skills.Vocabulary() {
		for _, syn := range skills.Synonyms(canonical) {
			assert.Equalf(t, 1.0, Lexical{}.Similarity(syn, canonical), "%q vs %q", syn, canonical)
		}
	}
}

func TestEmbeddingSimilarity(t *testing.T) {
	e := newStubEmbedding(t)

	assert.Equal(t, "embedding", e.Name())
	assert.Equal(t, "stub", e.Model())
	assert.Equal(t, 1.0, e.Similarity("docker", "docker"))
	assert.Equal(t, 1.0, e.Similarity("k8s", "kubernetes"))
	assert.InDelta(t, 0.8, e.Similarity("docker", "kubernetes"), 1e-6)
	assert.InDelta(t, e.Similarity("kubernetes", "docker"), e.Similarity("docker", "kubernetes"), 1e-12)
	assert.Equal(t, 0.0, e.Similarity("python", "docker"))
}

func TestEmbeddingFallsBackOutsideVocabulary(t *testing.T) {
	e := newStubEmbedding(t)

	assert.Equal(t, 1.0, e.Similarity("erlang", "Erlang"))
	assert.Equal(t, 0.5, e.Similarity("react native", "react"))
	assert.Equal(t, 0.0, e.Similarity("erlang", "docker"))
}

func TestEmbeddingClipsNegativeCosine(t *testing.T) {
	e, err := NewEmbedding(context.Background(), &stubEmbedder{overrides: map[string][]float32{
		"docker": {1, 0},
		"python": {-1, 0},
	}}, []string{"docker", "python"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, e.Similarity("docker", "python"))
}

func TestBestMatch(t *testing.T) {
	e := newStubEmbedding(t)

	m, ok := BestMatch(e, "docker", []string{"python", "kubernetes"})
	require.True(t, ok)
	assert.Equal(t, "kubernetes", m.Candidate)
	assert.InDelta(t, 0.8, m.Score, 1e-6)

	_, ok = BestMatch(Lexical{}, "docker", []string{"python", "kubernetes"})
	assert.False(t, ok)

	_, ok = BestMatch(Lexical{}, "docker", nil)
	assert.False(t, ok)
}

func TestBestMatchTieBreaksLexicographically(t *testing.T) {
	m, ok := BestMatch(Lexical{}, "python", []string{"flask", "django", "python"})
	require.True(t, ok)
	assert.Equal(t, Match{Candidate: "django", Score: 1}, m)
}

func TestSelect(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	log := zap.New(core)
	ctx := context.Background()

	b, err := Select(ctx, ModeLexical, &stubEmbedder{}, log)
	require.NoError(t, err)
	assert.Equal(t, "lexical", b.Name())

	stub := &stubEmbedder{}
	b, err = Select(ctx, ModeAuto, stub, log)
	require.NoError(t, err)
	assert.Equal(t, "embedding", b.Name())
	assert.Equal(t, 1, stub.calls)

	b, err = Select(ctx, ModeAuto, &stubEmbedder{err: errors.New("quota")}, log)
	require.NoError(t, err)
	assert.Equal(t, "lexical", b.Name())
	assert.Equal(t, 1, observed.FilterMessage("falling back to lexical similarity").Len())

	b, err = Select(ctx, ModeAuto, nil, log)
	require.NoError(t, err)
	assert.Equal(t, "lexical", b.Name())

	_, err = Select(ctx, ModeEmbedding, &stubEmbedder{err: errors.New("quota")}, log)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = Select(ctx, ModeEmbedding, nil, log)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = Select(ctx, Mode("neural"), nil, log)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Embedding ")
	require.NoError(t, err)
	assert.Equal(t, ModeEmbedding, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}

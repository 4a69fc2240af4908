package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/screening"
	"github.com/spigell/cv-screener/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildRequestFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jd.txt", "Requirements: Python, Docker")
	writeFile(t, dir, "alice.md", "# Alice\nPython")
	writeFile(t, dir, "bob", "Docker")
	extra := writeFile(t, dir, "carol.txt", "Go")
	manifest := writeFile(t, dir, "batch.yaml", `
job: jd.txt
must-have: [python]
candidates:
  - name: Alice Smith
    file: alice.md
  - file: bob
    mime: text/plain
`)

	req, err := buildRequest(screenInput{manifest: manifest, cvs: []string{extra}, mustHave: []string{"docker"}})
	require.NoError(t, err)

	assert.Equal(t, "Requirements: Python, Docker", string(req.JobDescription.Data))
	assert.Equal(t, []string{"docker", "python"}, req.MustHaveSkills)
	require.Len(t, req.Candidates, 3)
	assert.Equal(t, screening.Document{Name: "Alice Smith", MimeType: "text/markdown", Data: []byte("# Alice\nPython")}, req.Candidates[0])
	assert.Equal(t, "bob", req.Candidates[1].Name)
	assert.Equal(t, "text/plain", req.Candidates[1].MimeType)
	assert.Equal(t, "carol", req.Candidates[2].Name)
}

func TestBuildRequestValidation(t *testing.T) {
	dir := t.TempDir()
	jd := writeFile(t, dir, "jd.txt", "Python")

	_, err := buildRequest(screenInput{cvs: []string{jd}})
	assert.ErrorContains(t, err, "job description is required")

	_, err = buildRequest(screenInput{jd: jd})
	assert.ErrorContains(t, err, "at least one CV")

	_, err = buildRequest(screenInput{jd: jd, cvs: []string{filepath.Join(dir, "missing.txt")}})
	assert.ErrorContains(t, err, "reading CV")

	bad := writeFile(t, dir, "bad.yaml", "candidates:\n  - name: x\n")
	_, err = buildRequest(screenInput{jd: jd, manifest: bad})
	assert.ErrorContains(t, err, "has no file")
}

func testSession(t *testing.T) *screening.Session {
	t.Helper()

	dir := t.TempDir()
	req, err := buildRequest(screenInput{
		jd:       writeFile(t, dir, "jd.txt", "Requirements:\n- Python\n- Docker\n- 5 years of experience"),
		mustHave: []string{"python"},
		cvs: []string{
			writeFile(t, dir, "alice.txt", "Python and Kubernetes engineer with 6 years of experience."),
			writeFile(t, dir, "bob.txt", "Python and Docker developer with 6 years of experience."),
		},
	})
	require.NoError(t, err)

	deps, err := newApplication(context.Background(), &Config{
		Similarity: &SimilarityConfig{Backend: "lexical"},
		Store:      store.Config{Kind: store.KindMemory},
	}, zap.NewNop())
	require.NoError(t, err)

	session, err := deps.screener.Run(context.Background(), req)
	require.NoError(t, err)
	return session
}

func TestPrintRanking(t *testing.T) {
	session := testSession(t)

	var buf bytes.Buffer
	require.NoError(t, printSession(&buf, session, OutputTable))

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Regexp(t, `1\s+bob\s+82\.50\s+good`, out)
	assert.Regexp(t, `2\s+alice\s+65\.00\s+moderate\s+python\s+docker`, out)
	assert.Contains(t, out, "session: "+session.ID)
	assert.Contains(t, out, "similarity backend: lexical")

	assert.Error(t, printSession(&buf, session, "xml"))
}

func TestPrintCandidate(t *testing.T) {
	session := testSession(t)
	alice, ok := session.Candidate("alice")
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, printCandidate(&buf, alice))

	out := buf.String()
	assert.Contains(t, out, "alice: 65.00 (moderate)")
	assert.Regexp(t, `skills\s+50\.00\s+x 0\.35`, out)
	assert.Contains(t, out, "missing: docker")
	assert.Contains(t, out, "experience: Meets experience requirement (6 years)")
}

func TestNewBackendFallsBackWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	b, err := newBackend(context.Background(), &Config{
		Similarity: &SimilarityConfig{Backend: "auto"},
		AI:         &AIConfig{Provider: "gemini", Gemini: &GeminiConfig{}},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "lexical", b.Name())

	_, err = newBackend(context.Background(), &Config{
		Similarity: &SimilarityConfig{Backend: "embedding"},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	config := &Config{
		AI:    &AIConfig{Gemini: &GeminiConfig{APIKey: "secret"}},
		Store: store.Config{Redis: store.RedisConfig{Password: "pass"}},
	}

	out := redacted(config)

	assert.Equal(t, "***", out.AI.Gemini.APIKey)
	assert.Equal(t, "***", out.Store.Redis.Password)
	assert.Equal(t, "secret", config.AI.Gemini.APIKey)
	assert.Equal(t, "pass", config.Store.Redis.Password)
}

// Package screening runs one job description against a batch of CVs and
// assembles the ranked session.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/metrics"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/signals"
)

var ErrNoCandidates = errors.New("no candidates could be scored")

const defaultWorkers = 4

type Document struct {
	Name     string
	MimeType string
	Data     []byte
}

type Request struct {
	JobDescription Document
	Candidates     []Document
	// MustHaveSkills are always checked regardless of the JD text.
	MustHaveSkills []string
}

// Saver persists finished sessions and returns the assigned id.
type Saver interface {
	Put(ctx context.Context, s *Session) (string, error)
	Kind() string
}

type Config struct {
	Workers int            `mapstructure:"workers"`
	Signals signals.Config `mapstructure:"signals"`
}

type Deps struct {
	Extractor extract.Extractor
	Engine    *scoring.Engine
	Store     Saver
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// Now is the reference date for "present" in CVs. Defaults to time.Now.
	Now func() time.Time
}

type Screener struct {
	workers   int
	signals   signals.Config
	extractor extract.Extractor
	engine    *scoring.Engine
	store     Saver
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func New(cfg *Config, deps *Deps) *Screener {
	if cfg == nil {
		cfg = &Config{}
	}
	if deps == nil {
		deps = &Deps{}
	}

	s := &Screener{
		workers:   cfg.Workers,
		signals:   cfg.Signals,
		extractor: deps.Extractor,
		engine:    deps.Engine,
		store:     deps.Store,
		metrics:   deps.Metrics,
		logger:    logger.WithFields(deps.Logger),
		now:       deps.Now,
	}

	if s.workers <= 0 {
		s.workers = defaultWorkers
	}
	if s.extractor == nil {
		s.extractor = extract.NewRegistry(extract.PlainText{})
	}
	if s.engine == nil {
		s.engine = scoring.New(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

type Capabilities struct {
	Backend string   `json:"similarity_backend"`
	Model   string   `json:"embedding_model,omitempty"`
	Formats []string `json:"formats"`
	Store   string   `json:"session_store"`
}

func (s *Screener) Capabilities() Capabilities {
	c := Capabilities{
		Backend: s.engine.Backend().Name(),
		Formats: s.extractor.Formats(),
		Store:   "none",
	}
	if m, ok := s.engine.Backend().(interface{ Model() string }); ok {
		c.Model = m.Model()
	}
	if s.store != nil {
		c.Store = s.store.Kind()
	}
	return c
}

// Run scores every candidate against the job description. Candidates whose
// document cannot be read are reported as skipped; the run fails only when the
// JD is unreadable or no candidate could be scored. The session is stored once
// it is complete.
func (s *Screener) Run(ctx context.Context, req Request) (session *Session, err error) {
	backend := s.engine.Backend().Name()
	log := s.logger.With(logger.ScreeningFields(backend, "")...)

	done := s.metrics.RunStarted(backend)
	defer func() { done(err) }()

	if len(req.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no documents submitted", ErrNoCandidates)
	}

	jdText, err := s.extractor.Extract(req.JobDescription.Data, req.JobDescription.MimeType)
	if err != nil {
		return nil, fmt.Errorf("extracting job description: %w", err)
	}

	started := s.now()
	extractor := signals.New(s.signals, started)
	job := extractor.ExtractJob(jdText, req.MustHaveSkills)

	log.Info("job description parsed",
		zap.Int("required_skills", len(job.RequiredSkills)),
		zap.Int("preferred_skills", len(job.PreferredSkills)),
		zap.Int("must_have_skills", len(job.MustHaveSkills)),
		zap.Int("candidates", len(req.Candidates)),
	)

	results := make([]*scoring.MatchResult, len(req.Candidates))
	skipped := make([]*SkippedCandidate, len(req.Candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, doc := range req.Candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := candidateName(doc, i)
			clog := log.With(zap.String(logger.FieldCandidate, name))

			text, err := s.extractor.Extract(doc.Data, doc.MimeType)
			if err != nil {
				reason, ok := skipReason(err)
				if !ok {
					return fmt.Errorf("extracting %s: %w", name, err)
				}
				clog.Warn("skipping candidate", zap.String("reason", reason), zap.Error(err))
				s.metrics.CandidateSkipped(reason)
				skipped[i] = &SkippedCandidate{Name: name, Order: i, Reason: err.Error()}
				return nil
			}

			res := s.engine.Score(name, job, extractor.Extract(text))
			res.Order = i
			results[i] = &res

			clog.Debug("candidate scored",
				zap.Float64("final_score", res.FinalScore),
				zap.String("verdict", string(res.Verdict)),
			)
			s.metrics.CandidateScored(string(res.Verdict), res.FinalScore)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored := make([]scoring.MatchResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			scored = append(scored, *r)
		}
	}
	skippedList := make([]SkippedCandidate, 0)
	for _, sk := range skipped {
		if sk != nil {
			skippedList = append(skippedList, *sk)
		}
	}

	if len(scored) == 0 {
		reasons := make([]string, 0, len(skippedList))
		for _, sk := range skippedList {
			reasons = append(reasons, sk.Name+": "+sk.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoCandidates, strings.Join(reasons, "; "))
	}

	ranked := scoring.Rank(scored)
	session = &Session{
		Job:       job,
		Results:   ranked,
		Skipped:   skippedList,
		Summary:   scoring.Summarize(ranked),
		Backend:   backend,
		CreatedAt: started,
	}

	if s.store != nil {
		id, err := s.store.Put(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("storing session: %w", err)
		}
		session.ID = id
	}

	log.Info("screening finished",
		zap.String(logger.FieldSession, session.ID),
		zap.Int("scored", len(scored)),
		zap.Int("skipped", len(skippedList)),
		zap.String("top_candidate", session.Summary.TopCandidate),
		zap.Float64("top_score", session.Summary.TopScore),
	)

	return session, nil
}

func candidateName(doc Document, i int) string {
	if name := strings.TrimSpace(doc.Name); name != "" {
		return name
	}
	return fmt.Sprintf("candidate-%d", i+1)
}

func skipReason(err error) (string, bool) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported_format", true
	case errors.Is(err, extract.ErrCorruptDocument):
		return "corrupt_document", true
	default:
		return "", false
	}
}

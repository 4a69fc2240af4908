// Package signals turns plain CV and JD text into structured profile data.
package signals

import (
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/skills"
)

// RedFlagConfig holds the thresholds used by the red flag heuristics.
type RedFlagConfig struct {
	// GapMonths is the largest tolerated break between two consecutive roles.
	GapMonths int `mapstructure:"gap-months"`
	// JobChangeCount is the number of role starts tolerated inside JobChangeWindowYears.
	JobChangeCount       int `mapstructure:"job-change-count"`
	JobChangeWindowYears int `mapstructure:"job-change-window-years"`
	// ShortTenureMonths flags the most recent role when it ended sooner.
	ShortTenureMonths int `mapstructure:"short-tenure-months"`
}

type Config struct {
	RedFlags           RedFlagConfig `mapstructure:"red-flags"`
	MaxExperienceYears float64       `mapstructure:"max-experience-years"`
}

func DefaultConfig() Config {
	return Config{
		RedFlags: RedFlagConfig{
			GapMonths:            6,
			JobChangeCount:       3,
			JobChangeWindowYears: 5,
			ShortTenureMonths:    12,
		},
		MaxExperienceYears: 45,
	}
}

// withDefaults fills zero values so a partially configured Config still works.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RedFlags.GapMonths <= 0 {
		c.RedFlags.GapMonths = d.RedFlags.GapMonths
	}
	if c.RedFlags.JobChangeCount <= 0 {
		c.RedFlags.JobChangeCount = d.RedFlags.JobChangeCount
	}
	if c.RedFlags.JobChangeWindowYears <= 0 {
		c.RedFlags.JobChangeWindowYears = d.RedFlags.JobChangeWindowYears
	}
	if c.RedFlags.ShortTenureMonths <= 0 {
		c.RedFlags.ShortTenureMonths = d.RedFlags.ShortTenureMonths
	}
	if c.MaxExperienceYears <= 0 {
		c.MaxExperienceYears = d.MaxExperienceYears
	}
	return c
}

// Extractor is stateless apart from its configuration and reference date,
// so one value can serve concurrent callers.
type Extractor struct {
	cfg Config
	now time.Time
}

// New returns an extractor that resolves "present" to now.
func New(cfg Config, now time.Time) *Extractor {
	if now.IsZero() {
		now = time.Now()
	}
	return &Extractor{cfg: cfg.withDefaults(), now: now.UTC()}
}

// Extract never fails. Missing information yields empty values.
func (e *Extractor) Extract(text string) profile.ProfileSignals {
	doc := newDocument(text)

	signals := profile.ProfileSignals{
		Skills:         skills.Find(text),
		Seniority:      profile.SeniorityUnspecified,
		Education:      extractEducation(doc),
		Certifications: findCertifications(doc.lower),
		Achievements:   extractAchievements(doc),
		RedFlags:       []profile.RedFlagKind{},
	}
	if signals.Education == nil {
		signals.Education = []profile.EducationEntry{}
	}

	if doc.empty() {
		signals.Roles = []profile.Role{}
		return signals
	}

	signals.Roles = e.extractRoles(doc)
	signals.ExperienceYears = e.experienceYears(doc, signals.Roles)
	signals.Seniority = seniorityFromText(doc.lower, signals.ExperienceYears)
	signals.RedFlags = e.redFlags(doc, signals)

	return signals
}

var preferredMarkers = []string{"preferred", "nice to have", "nice-to-have", "bonus", "a plus", "desirable", "optional", "an advantage"}

var requiredMarkers = []string{"required", "requirements", "must have", "must-have", "essential", "mandatory", "qualifications"}

// ExtractJob reads a JD. Skills found on preferred lines or under a preferred
// heading become preferred, everything else is required. A skill present in
// both lists stays required. mustHave is canonicalized as given.
func (e *Extractor) ExtractJob(text string, mustHave []string) profile.JobRequirements {
	canonMust := make([]string, 0, len(mustHave))
	for _, s := range mustHave {
		canonMust = append(canonMust, skills.Canonicalize(s))
	}

	req := profile.JobRequirements{
		RequiredSkills:         []string{},
		PreferredSkills:        []string{},
		MustHaveSkills:         profile.SortedSet(canonMust),
		Seniority:              profile.SeniorityUnspecified,
		RequiredCertifications: []string{},
	}

	doc := newDocument(text)
	if doc.empty() {
		return req
	}

	var required, preferred, requiredText []string
	sectionPreferred := false
	for _, line := range doc.lines {
		lower := strings.ToLower(line)
		linePreferred := containsAny(lower, preferredMarkers)
		lineRequired := containsAny(lower, requiredMarkers)

		if isHeading(lower) {
			sectionPreferred = linePreferred
		}

		found := skills.Find(line)
		if linePreferred || (sectionPreferred && !lineRequired) {
			preferred = append(preferred, found...)
			continue
		}
		required = append(required, found...)
		requiredText = append(requiredText, line)
	}

	req.RequiredSkills = profile.SortedSet(required)
	for _, s := range profile.SortedSet(preferred) {
		if !profile.Contains(req.RequiredSkills, s) {
			req.PreferredSkills = append(req.PreferredSkills, s)
		}
	}

	if years, ok := maxExplicitYears(doc.lower); ok {
		floor := int(years)
		req.MinExperienceYears = &floor
	}

	var minYears *float64
	if req.MinExperienceYears != nil {
		v := float64(*req.MinExperienceYears)
		minYears = &v
	}
	req.Seniority = seniorityFromText(doc.lower, minYears)

	reqDoc := newDocument(strings.Join(requiredText, "\n"))
	var fields []string
	for _, entry := range extractEducation(reqDoc) {
		if req.MinDegree == profile.DegreeNone || entry.Degree.Level() < req.MinDegree.Level() {
			req.MinDegree = entry.Degree
		}
		if entry.Field != "" {
			fields = append(fields, entry.Field)
		}
	}
	if len(fields) > 0 {
		req.DegreeFields = profile.SortedSet(fields)
	}
	req.RequiredCertifications = findCertifications(reqDoc.lower)

	return req
}

// isHeading reports whether the line introduces a section, e.g. "Nice to have:".
func isHeading(lower string) bool {
	t := strings.TrimSpace(strings.TrimLeft(lower, "#*-• "))
	if strings.HasSuffix(t, ":") {
		return true
	}
	return len(strings.Fields(t)) <= 4 && (containsAny(t, preferredMarkers) || containsAny(t, requiredMarkers))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// document keeps the trimmed non-empty lines of a text next to their lowercase join.
type document struct {
	lines []string
	lower string
}

func newDocument(text string) document {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return document{lines: lines, lower: strings.ToLower(strings.Join(lines, "\n"))}
}

func (d document) empty() bool {
	return len(d.lines) == 0
}

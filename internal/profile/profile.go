// Package profile holds the value types shared by the extractor, the scoring
// engine and the screening session.
package profile

import (
	"sort"
	"strings"
	"time"
)

// Seniority is the career level detected in a document.
type Seniority string

const (
	SeniorityUnspecified Seniority = "unspecified"
	SeniorityJunior      Seniority = "junior"
	SeniorityMid         Seniority = "mid"
	SenioritySenior      Seniority = "senior"
	SeniorityLead        Seniority = "lead"
)

// Rank orders seniority levels. Unspecified is 0.
func (s Seniority) Rank() int {
	switch s {
	case SeniorityJunior:
		return 1
	case SeniorityMid:
		return 2
	case SenioritySenior:
		return 3
	case SeniorityLead:
		return 4
	default:
		return 0
	}
}

// RedFlagKind enumerates the heuristics that may lower a candidate's score.
type RedFlagKind string

const (
	RedFlagEmploymentGap     RedFlagKind = "employment_gap"
	RedFlagFrequentJobChange RedFlagKind = "frequent_job_change"
	RedFlagNoCertification   RedFlagKind = "no_certification"
	RedFlagShortTenure       RedFlagKind = "short_tenure"
)

// Degree is a normalized academic level.
type Degree string

const (
	DegreeNone      Degree = ""
	DegreeDiploma   Degree = "diploma"
	DegreeAssociate Degree = "associate"
	DegreeBachelor  Degree = "bachelor"
	DegreeMaster    Degree = "master"
	DegreePhD       Degree = "phd"
)

// Level returns the ordinal of the degree, 0 for none.
func (d Degree) Level() int {
	switch d {
	case DegreeDiploma:
		return 1
	case DegreeAssociate:
		return 2
	case DegreeBachelor:
		return 3
	case DegreeMaster:
		return 4
	case DegreePhD:
		return 5
	default:
		return 0
	}
}

type EducationEntry struct {
	Degree      Degree `json:"degree"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// Role is one employment entry recovered from a CV. End is zero when Current is set.
type Role struct {
	Title     string    `json:"title,omitempty"`
	Seniority Seniority `json:"seniority"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end,omitempty"`
	Current   bool      `json:"current,omitempty"`
}

// Months returns the tenure of the role relative to now for current roles.
func (r Role) Months(now time.Time) int {
	end := r.End
	if r.Current || end.IsZero() {
		end = now
	}
	return MonthsBetween(r.Start, end)
}

// MonthsBetween counts whole calendar months from a to b. Negative spans return 0.
func MonthsBetween(a, b time.Time) int {
	m := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if m < 0 {
		return 0
	}
	return m
}

// ProfileSignals is the structured view of one CV. Values are not mutated after extraction.
type ProfileSignals struct {
	Skills          []string         `json:"skills"`
	ExperienceYears *float64         `json:"experience_years"`
	Seniority       Seniority        `json:"seniority"`
	Education       []EducationEntry `json:"education"`
	Certifications  []string         `json:"certifications"`
	Achievements    []string         `json:"achievements"`
	RedFlags        []RedFlagKind    `json:"red_flags"`
	Roles           []Role           `json:"roles,omitempty"`
}

// HighestDegree returns the best education entry, or false when there is none.
func (p ProfileSignals) HighestDegree() (EducationEntry, bool) {
	var best EducationEntry
	found := false
	for _, e := range p.Education {
		if !found || e.Degree.Level() > best.Degree.Level() {
			best = e
			found = true
		}
	}
	return best, found
}

// JobRequirements is the structured view of a JD.
type JobRequirements struct {
	RequiredSkills         []string  `json:"required_skills"`
	PreferredSkills        []string  `json:"preferred_skills"`
	MustHaveSkills         []string  `json:"must_have_skills"`
	MinExperienceYears     *int      `json:"min_experience_years"`
	Seniority              Seniority `json:"seniority"`
	MinDegree              Degree    `json:"min_degree,omitempty"`
	DegreeFields           []string  `json:"degree_fields,omitempty"`
	RequiredCertifications []string  `json:"required_certifications,omitempty"`
}

// SortedSet lowercases, trims and de-duplicates values, returning them sorted.
// The result is never nil.
func SortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether the sorted set holds v.
func Contains(set []string, v string) bool {
	i := sort.SearchStrings(set, v)
	return i < len(set) && set[i] == v
}

// SortedFlags de-duplicates and sorts red flags. The result is never nil.
func SortedFlags(flags []RedFlagKind) []RedFlagKind {
	seen := make(map[RedFlagKind]struct{}, len(flags))
	out := make([]RedFlagKind, 0, len(flags))
	for _, f := range flags {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

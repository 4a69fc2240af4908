package signals

import (
	"regexp"
	"sort"
	"time"

	"github.com/spigell/cv-screener/internal/profile"
)

var (
	gapMentions = compileAll("career break", "employment gap", "gap year", "sabbatical")

	// certExpecting are domains where a missing certification is notable.
	certExpecting = compileAll("cloud", "aws", "azure", "gcp", "security", "cybersecurity", "network", "networking",
		"compliance", "audit", "auditor", "devops", "project manager", "scrum master", "itil")
)

func matchesAny(lower string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (e *Extractor) redFlags(doc document, s profile.ProfileSignals) []profile.RedFlagKind {
	flags := make([]profile.RedFlagKind, 0)
	roles := sortedByStart(s.Roles)

	if matchesAny(doc.lower, gapMentions) || e.hasGap(roles) {
		flags = append(flags, profile.RedFlagEmploymentGap)
	}
	if e.frequentChanges(roles) {
		flags = append(flags, profile.RedFlagFrequentJobChange)
	}
	if e.shortTenure(roles) {
		flags = append(flags, profile.RedFlagShortTenure)
	}
	if len(s.Certifications) == 0 && matchesAny(doc.lower, certExpecting) {
		flags = append(flags, profile.RedFlagNoCertification)
	}

	return profile.SortedFlags(flags)
}

func sortedByStart(roles []profile.Role) []profile.Role {
	out := append([]profile.Role(nil), roles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (e *Extractor) roleEnd(r profile.Role) time.Time {
	if r.Current || r.End.IsZero() {
		return monthStart(e.now)
	}
	return r.End
}

// hasGap compares each start with the latest end seen so far, so overlapping
// roles do not count as a break.
func (e *Extractor) hasGap(roles []profile.Role) bool {
	if len(roles) < 2 {
		return false
	}
	covered := e.roleEnd(roles[0])
	for _, r := range roles[1:] {
		if profile.MonthsBetween(covered, r.Start) > e.cfg.RedFlags.GapMonths {
			return true
		}
		if end := e.roleEnd(r); end.After(covered) {
			covered = end
		}
	}
	return false
}

func (e *Extractor) frequentChanges(roles []profile.Role) bool {
	limit := e.cfg.RedFlags.JobChangeCount
	if len(roles) <= limit {
		return false
	}
	window := e.cfg.RedFlags.JobChangeWindowYears
	for i := range roles {
		until := roles[i].Start.AddDate(window, 0, 0)
		count := 0
		for _, r := range roles[i:] {
			if r.Start.Before(until) {
				count++
			}
		}
		if count > limit {
			return true
		}
	}
	return false
}

// shortTenure looks at the most recently started role. An ongoing role is
// never short.
func (e *Extractor) shortTenure(roles []profile.Role) bool {
	if len(roles) == 0 {
		return false
	}
	last := roles[len(roles)-1]
	if last.Current {
		return false
	}
	return profile.MonthsBetween(last.Start, last.End) < e.cfg.RedFlags.ShortTenureMonths
}

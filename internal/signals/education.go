package signals

import (
	"regexp"
	"strings"

	"github.com/spigell/cv-screener/internal/profile"
)

var degreePatterns = []struct {
	degree profile.Degree
	re     *regexp.Regexp
}{
	{profile.DegreePhD, regexp.MustCompile(`\b(?:ph\.?\s?d\b|doctorate\b|doctor of)`)},
	{profile.DegreeMaster, regexp.MustCompile(`\b(?:master(?:'s|s)?\b|msc\b|m\.sc\b|m\.s\.|mba\b|m\.eng\b)`)},
	{profile.DegreeBachelor, regexp.MustCompile(`\b(?:bachelor(?:'s|s)?\b|bsc\b|b\.sc\b|b\.s\.|b\.a\.|b\.eng\b|btech\b|b\.tech\b)`)},
	{profile.DegreeAssociate, regexp.MustCompile(`\bassociate(?:'s)? (?:degree|of)\b`)},
	{profile.DegreeDiploma, regexp.MustCompile(`\b(?:diploma|hnd)\b`)},
}

var (
	institutionRe = regexp.MustCompile(`((?:[a-z&.'-]+\s+){0,4}(?:university|college|institute|polytechnic|academy)(?:\s+of(?:\s+[a-z&.'-]+){1,3})?)`)
	fieldStopRe   = regexp.MustCompile(`\s*(?:[,;(|]|\s-\s|–|—|\bfrom\b|\bat\b|\d|$)`)
	schoolWordsRe = regexp.MustCompile(`\b(?:university|college|institute|polytechnic|academy|school)\b`)
)

// matchDegree returns the highest degree mentioned on a lowercased line and
// the offset just after the match.
func matchDegree(lower string) (profile.Degree, int, bool) {
	for _, p := range degreePatterns {
		for _, loc := range p.re.FindAllStringIndex(lower, -1) {
			// "scrum master" is a role, not a degree
			if p.degree == profile.DegreeMaster && strings.HasSuffix(lower[:loc[0]], "scrum ") {
				continue
			}
			return p.degree, loc[1], true
		}
	}
	return profile.DegreeNone, 0, false
}

func isEducationLine(lower string) bool {
	if _, _, ok := matchDegree(lower); ok {
		return true
	}
	return schoolWordsRe.MatchString(lower)
}

func extractEducation(doc document) []profile.EducationEntry {
	entries := make([]profile.EducationEntry, 0)
	seen := make(map[profile.EducationEntry]struct{})

	for i, line := range doc.lines {
		lower := strings.ToLower(line)
		degree, end, ok := matchDegree(lower)
		if !ok {
			continue
		}

		entry := profile.EducationEntry{
			Degree:      degree,
			Field:       degreeField(lower[end:]),
			Institution: institution(lower),
		}
		if entry.Institution == "" && i+1 < len(doc.lines) {
			next := strings.ToLower(doc.lines[i+1])
			if _, _, nextIsDegree := matchDegree(next); !nextIsDegree {
				entry.Institution = institution(next)
			}
		}

		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}

	return entries
}

// degreeField reads "in Computer Science" or "of Arts" following a degree keyword.
func degreeField(rest string) string {
	idx := strings.Index(rest, " in ")
	if idx < 0 {
		idx = strings.Index(rest, " of ")
	}
	if idx < 0 || idx > 20 {
		return ""
	}
	rest = rest[idx+4:]

	if loc := fieldStopRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	if schoolWordsRe.MatchString(rest) {
		return ""
	}

	words := strings.Fields(rest)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Trim(strings.Join(words, " "), " .")
}

func institution(lower string) string {
	m := institutionRe.FindString(lower)
	return strings.TrimSpace(m)
}

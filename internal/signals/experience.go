package signals

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/profile"
)

const (
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	datePattern  = `(?:` + monthPattern + `\.?\s+(?:19|20)\d{2}|\d{1,2}/(?:19|20)\d{2}|(?:19|20)\d{2})`
)

var (
	rangeRe = regexp.MustCompile(`(?i)\b(` + datePattern + `)\s*(?:-|–|—|to|until|till)\s*(` + datePattern + `|present|current|now|today|date)\b`)

	monthYearRe = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{4})$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	yearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	explicitYearsRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\.?(?:\s+of)?(?:\s+[a-z+#./-]+){0,3}?\s+experience`),
		regexp.MustCompile(`experience\s*(?:of|:|-)?\s*(\d{1,2}(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`),
		regexp.MustCompile(`(?:at least|minimum(?:\s+of)?|over|more than)\s+(\d{1,2}(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`),
	}

	ongoing = map[string]bool{"present": true, "current": true, "now": true, "today": true, "date": true}
)

// maxExplicitYears returns the largest "N years of experience" style figure in lowercased text.
func maxExplicitYears(lower string) (float64, bool) {
	best, found := 0.0, false
	for _, re := range explicitYearsRes {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if !found || v > best {
				best, found = v, true
			}
		}
	}
	return best, found
}

// parseDate reads one side of a date range. Year-only values resolve to January.
func (e *Extractor) parseDate(s string) (time.Time, bool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ongoing[s] {
		return monthStart(e.now), true, true
	}

	if m := monthYearRe.FindStringSubmatch(s); m != nil && len(m[1]) >= 3 {
		month, ok := monthByPrefix[m[1][:3]]
		if !ok {
			return time.Time{}, false, false
		}
		year, _ := strconv.Atoi(m[2])
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), false, true
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return time.Time{}, false, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), false, true
	}

	if year, err := strconv.Atoi(s); err == nil && len(s) == 4 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), false, true
	}

	return time.Time{}, false, false
}

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// extractRoles collects every employment date range outside education lines.
// The title is the rest of the line, or the previous line when the range stands alone.
func (e *Extractor) extractRoles(doc document) []profile.Role {
	roles := make([]profile.Role, 0)
	now := monthStart(e.now)

	for i, line := range doc.lines {
		if isEducationLine(strings.ToLower(line)) {
			continue
		}

		matches := rangeRe.FindAllStringSubmatchIndex(line, -1)
		for _, m := range matches {
			start, _, ok := e.parseDate(line[m[2]:m[3]])
			if !ok {
				continue
			}
			end, current, ok := e.parseDate(line[m[4]:m[5]])
			if !ok || end.Before(start) || start.After(now) {
				continue
			}
			if end.After(now) {
				end = now
			}

			title := cleanTitle(line[:m[0]] + " " + line[m[1]:])
			if title == "" && i > 0 && !rangeRe.MatchString(doc.lines[i-1]) {
				title = cleanTitle(doc.lines[i-1])
			}

			role := profile.Role{
				Title:     title,
				Seniority: keywordSeniority(strings.ToLower(title)),
				Start:     start,
				Current:   current,
			}
			if !current {
				role.End = end
			}
			roles = append(roles, role)
		}
	}

	return roles
}

var titleTrim = regexp.MustCompile(`\s+`)

func cleanTitle(s string) string {
	s = titleTrim.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,|-–—()[]@:;•*")
}

// experienceYears prefers explicit statements, then merged role coverage,
// then the span of years mentioned. The result is capped.
func (e *Extractor) experienceYears(doc document, roles []profile.Role) *float64 {
	years, ok := maxExplicitYears(doc.lower)
	if !ok {
		years, ok = e.coveredYears(roles)
	}
	if !ok {
		years, ok = e.yearSpan(doc)
	}
	if !ok {
		return nil
	}

	years = math.Min(years, e.cfg.MaxExperienceYears)
	years = math.Round(years*100) / 100
	return &years
}

type interval struct{ from, to int }

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func (e *Extractor) coveredYears(roles []profile.Role) (float64, bool) {
	if len(roles) == 0 {
		return 0, false
	}

	now := monthStart(e.now)
	spans := make([]interval, 0, len(roles))
	for _, r := range roles {
		end := r.End
		if r.Current || end.IsZero() {
			end = now
		}
		spans = append(spans, interval{from: monthIndex(r.Start), to: monthIndex(end)})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })

	total := 0
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.from <= cur.to {
			if s.to > cur.to {
				cur.to = s.to
			}
			continue
		}
		total += cur.to - cur.from
		cur = s
	}
	total += cur.to - cur.from

	if total <= 0 {
		return 0, false
	}
	return float64(total) / 12, true
}

func (e *Extractor) yearSpan(doc document) (float64, bool) {
	lowest, highest := 0, 0
	for _, line := range doc.lines {
		lower := strings.ToLower(line)
		if isEducationLine(lower) {
			continue
		}
		for _, y := range yearRe.FindAllString(lower, -1) {
			v, _ := strconv.Atoi(y)
			if v > e.now.Year() {
				continue
			}
			if lowest == 0 || v < lowest {
				lowest = v
			}
			if v > highest {
				highest = v
			}
		}
	}
	if highest <= lowest {
		return 0, false
	}
	return float64(highest - lowest), true
}

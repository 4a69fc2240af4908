package signals

import (
	"regexp"
	"strings"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/skills"
)

type keywordSet struct {
	level    profile.Seniority
	patterns []*regexp.Regexp
}

func compileAll(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, skills.BoundaryRegexp(w))
	}
	return out
}

// seniorityKeywords is ordered from the highest level down.
var seniorityKeywords = []keywordSet{
	{profile.SeniorityLead, compileAll("lead", "tech lead", "team lead", "principal", "staff engineer", "head of", "architect", "manager", "director", "vp")},
	{profile.SenioritySenior, compileAll("senior", "sr")},
	{profile.SeniorityMid, compileAll("mid-level", "mid level", "intermediate")},
	{profile.SeniorityJunior, compileAll("junior", "jr", "entry-level", "entry level", "trainee", "intern", "internship", "apprentice")},
}

func keywordSeniority(lower string) profile.Seniority {
	if lower == "" {
		return profile.SeniorityUnspecified
	}
	for _, set := range seniorityKeywords {
		for _, re := range set.patterns {
			if re.MatchString(lower) {
				return set.level
			}
		}
	}
	return profile.SeniorityUnspecified
}

// seniorityFromText uses the highest keyword, then falls back to years.
func seniorityFromText(lower string, years *float64) profile.Seniority {
	if s := keywordSeniority(lower); s != profile.SeniorityUnspecified {
		return s
	}
	if years == nil {
		return profile.SeniorityUnspecified
	}
	switch {
	case *years >= 8:
		return profile.SenioritySenior
	case *years >= 3:
		return profile.SeniorityMid
	default:
		return profile.SeniorityJunior
	}
}

var certifications = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"aws certified", compileAll("aws certified", "aws certification", "aws solutions architect")},
	{"azure certified", compileAll("azure certified", "microsoft certified: azure", "az-900", "az-104", "az-204")},
	{"google cloud certified", compileAll("google cloud certified", "gcp certified", "professional cloud architect")},
	{"pmp", compileAll("pmp", "project management professional")},
	{"prince2", compileAll("prince2")},
	{"itil", compileAll("itil")},
	{"cissp", compileAll("cissp")},
	{"ceh", compileAll("ceh", "certified ethical hacker")},
	{"comptia security+", compileAll("comptia security+", "security+")},
	{"comptia a+", compileAll("comptia a+")},
	{"ccna", compileAll("ccna")},
	{"ccnp", compileAll("ccnp")},
	{"cka", compileAll("cka", "certified kubernetes administrator")},
	{"ckad", compileAll("ckad", "certified kubernetes application developer")},
	{"csm", compileAll("csm", "certified scrummaster", "certified scrum master")},
	{"oscp", compileAll("oscp")},
	{"cisa", compileAll("cisa")},
	{"cism", compileAll("cism")},
	{"cpa", compileAll("cpa")},
	{"cfa", compileAll("cfa")},
}

func findCertifications(lower string) []string {
	found := make([]string, 0)
	if lower == "" {
		return found
	}
	for _, c := range certifications {
		for _, re := range c.patterns {
			if re.MatchString(lower) {
				found = append(found, c.name)
				break
			}
		}
	}
	return profile.SortedSet(found)
}

var (
	actionVerbRe = regexp.MustCompile(`\b(?:increased|reduced|improved|led|managed|delivered|built|launched|saved|grew|achieved|generated|cut|decreased|boosted|optimized|optimised|developed|designed|implemented|migrated|scaled|automated|mentored|won|doubled|tripled)\b`)
	quantityRe   = regexp.MustCompile(`\$\s?\d[\d,.]*|\d[\d,.]*\s*(?:%|percent|x\b|k\b|m\b|million|thousand)|\b\d[\d,.]*\b`)
	fourDigitRe  = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	sentenceRe   = regexp.MustCompile(`[.!?]\s+`)
)

// extractAchievements keeps sentences with an action verb and a figure that
// is not just a year. Order follows the document.
func extractAchievements(doc document) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})

	for _, line := range doc.lines {
		for _, sentence := range sentenceRe.Split(line, -1) {
			sentence = strings.Trim(strings.TrimSpace(sentence), "-•*▪ ")
			sentence = strings.TrimRight(sentence, ".")
			if sentence == "" {
				continue
			}
			lower := strings.ToLower(sentence)
			if !actionVerbRe.MatchString(lower) || !quantified(lower) {
				continue
			}
			if _, dup := seen[lower]; dup {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, sentence)
		}
	}

	return out
}

func quantified(lower string) bool {
	for _, m := range quantityRe.FindAllString(lower, -1) {
		m = strings.TrimSpace(m)
		if fourDigitRe.MatchString(m) {
			continue
		}
		return true
	}
	return false
}

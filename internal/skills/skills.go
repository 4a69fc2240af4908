// Package skills holds the synonym taxonomy shared by signal extraction and
// the lexical similarity backend.
package skills

import (
	"regexp"
	"sort"
	"strings"
)

// groups maps a canonical skill name to every surface form that means it.
// A surface form belongs to exactly one group.
var groups = map[string][]string{
	"python":             {"python", "py", "django", "flask", "fastapi"},
	"javascript":         {"javascript", "js", "node.js", "nodejs", "react", "vue", "angular"},
	"typescript":         {"typescript"},
	"java":               {"java", "spring", "hibernate", "j2ee"},
	"golang":             {"golang", "go lang"},
	"c++":                {"c++", "cpp"},
	"c#":                 {"c#", ".net", "dotnet"},
	"sql":                {"sql", "mysql", "postgresql", "postgres", "oracle", "database", "rdbms"},
	"nosql":              {"nosql", "mongodb", "cassandra", "dynamodb"},
	"redis":              {"redis"},
	"aws":                {"aws", "amazon web services", "ec2", "s3", "lambda", "cloudformation"},
	"azure":              {"azure"},
	"gcp":                {"gcp", "google cloud"},
	"docker":             {"docker", "containerization"},
	"kubernetes":         {"kubernetes", "k8s", "helm"},
	"terraform":          {"terraform"},
	"ci/cd":              {"ci/cd", "jenkins", "github actions", "gitlab ci"},
	"linux":              {"linux", "unix", "bash"},
	"git":                {"git"},
	"machine learning":   {"machine learning", "ml", "ai", "tensorflow", "pytorch", "scikit-learn"},
	"data analysis":      {"data analysis", "pandas", "numpy"},
	"project management": {"project management", "pmp", "agile", "scrum", "kanban"},
	"rest api":           {"rest api", "restful"},
	"graphql":            {"graphql"},
	"microservices":      {"microservices"},
	"html":               {"html"},
	"css":                {"css"},
	"cybersecurity":      {"cybersecurity", "information security", "penetration testing"},
}

type surface struct {
	form      string
	canonical string
	re        *regexp.Regexp
}

var (
	surfaces   []surface
	toGroup    map[string]string
	whitespace = regexp.MustCompile(`\s+`)
)

func init() {
	toGroup = make(map[string]string)
	for canonical, forms := range groups {
		toGroup[canonical] = canonical
		for _, form := range forms {
			toGroup[form] = canonical
			surfaces = append(surfaces, surface{
				form:      form,
				canonical: canonical,
				re:        BoundaryRegexp(form),
			})
		}
	}
	sort.Slice(surfaces, func(i, j int) bool { return surfaces[i].form < surfaces[j].form })
}

// BoundaryRegexp matches the phrase as a whole token inside lowercased text.
// Symbols common in skill names (+, #) count as part of a token.
func BoundaryRegexp(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9+#])` + regexp.QuoteMeta(phrase) + `(?:$|[^a-z0-9+#])`)
}

// Normalize lowercases text and collapses runs of whitespace.
func Normalize(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Canonicalize maps a surface form to its group name. Unknown skills are
// returned normalized.
func Canonicalize(s string) string {
	s = Normalize(s)
	if c, ok := toGroup[s]; ok {
		return c
	}
	return s
}

// Known reports whether the string is a surface form from the taxonomy.
func Known(s string) bool {
	_, ok := toGroup[Normalize(s)]
	return ok
}

// Synonyms returns the surface forms of the group containing s, or nil.
func Synonyms(s string) []string {
	c, ok := toGroup[Normalize(s)]
	if !ok {
		return nil
	}
	out := append([]string(nil), groups[c]...)
	sort.Strings(out)
	return out
}

// SameGroup reports whether two skills belong to the same synonym group.
// Skills outside the taxonomy only match themselves.
func SameGroup(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}

// Vocabulary returns every canonical skill name, sorted.
func Vocabulary() []string {
	out := make([]string, 0, len(groups))
	for c := range groups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Find returns the canonical skills mentioned in text, sorted and unique.
func Find(text string) []string {
	text = Normalize(text)
	if text == "" {
		return []string{}
	}

	found := make(map[string]struct{})
	for _, s := range surfaces {
		if _, ok := found[s.canonical]; ok {
			continue
		}
		if !strings.Contains(text, s.form) {
			continue
		}
		if s.re.MatchString(text) {
			found[s.canonical] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

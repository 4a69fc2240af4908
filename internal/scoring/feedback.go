package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/cv-screener/internal/profile"
)

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func experienceNote(minYears *int, years *float64) string {
	switch {
	case minYears == nil:
		return ""
	case years == nil:
		return "Experience duration not clearly stated in CV"
	case *years < float64(*minYears):
		gap := float64(*minYears) - *years
		gap = round2(gap)
		unit := "year"
		if gap > 1 {
			unit = "years"
		}
		return fmt.Sprintf("%s %s less than required (%s vs %d years)", formatYears(gap), unit, formatYears(*years), *minYears)
	default:
		return fmt.Sprintf("Meets experience requirement (%s years)", formatYears(*years))
	}
}

func strengths(job profile.JobRequirements, p profile.ProfileSignals, res MatchResult) []string {
	out := make([]string, 0)

	if y := p.ExperienceYears; y != nil {
		switch {
		case *y > 8:
			out = append(out, "Extensive experience")
		case *y > 5:
			out = append(out, "Good experience level")
		}
	}
	if best, ok := p.HighestDegree(); ok && best.Degree.Level() >= profile.DegreeMaster.Level() {
		out = append(out, "Advanced degree")
	}
	if len(p.Certifications) > 2 {
		out = append(out, "Well-certified")
	}
	if len(p.Skills) >= 10 {
		out = append(out, "Diverse skill set")
	}
	if len(job.RequiredSkills) > 0 && len(res.MissingSkills) == 0 {
		out = append(out, "Covers all required skills")
	}
	if promotions(p.Roles) > 0 {
		out = append(out, "Clear career growth")
	}
	if p.Seniority == profile.SeniorityLead || ledSomething(p.Achievements) {
		out = append(out, "Leadership experience")
	}

	return out
}

func weaknesses(p profile.ProfileSignals, res MatchResult) []string {
	out := make([]string, 0)

	if y := p.ExperienceYears; y != nil && *y < 2 {
		out = append(out, "Limited experience")
	}
	if len(p.Skills) < 5 {
		out = append(out, "Limited technical skills")
	}
	if len(p.Certifications) == 0 {
		out = append(out, "No professional certifications")
	}
	if y := p.ExperienceYears; y != nil && *y > 5 && len(p.Roles) > 1 && promotions(p.Roles) == 0 {
		out = append(out, "Limited career progression")
	}
	if len(res.MissingMustHave) > 0 {
		out = append(out, "Missing must-have skills: "+strings.Join(res.MissingMustHave, ", "))
	}

	return out
}

// promotions counts rises in seniority between consecutive roles with a known level.
func promotions(roles []profile.Role) int {
	count, prev := 0, 0
	for _, r := range chronological(roles) {
		rank := r.Seniority.Rank()
		if rank == 0 {
			continue
		}
		if prev != 0 && rank > prev {
			count++
		}
		prev = rank
	}
	return count
}

var leadershipVerbs = []string{"led ", "managed ", "mentored ", "coordinated ", "oversaw "}

func ledSomething(achievements []string) bool {
	for _, a := range achievements {
		lower := strings.ToLower(a) + " "
		for _, v := range leadershipVerbs {
			if strings.HasPrefix(lower, v) || strings.Contains(lower, " "+v) {
				return true
			}
		}
	}
	return false
}

// remarks is a short recruiter-style paragraph built from the result.
func remarks(res MatchResult) string {
	parts := make([]string, 0, 5)

	switch {
	case res.FinalScore >= 80:
		parts = append(parts, "Strong candidate with excellent alignment to the role.")
	case res.FinalScore >= 60:
		parts = append(parts, "Good candidate with relevant experience.")
	default:
		parts = append(parts, "Candidate shows some potential but has significant gaps.")
	}

	matched := make([]string, 0, 5)
	for _, m := range res.MatchedSkills {
		if len(matched) == 5 {
			break
		}
		matched = append(matched, m.JDSkill)
	}
	if len(matched) > 0 {
		parts = append(parts, fmt.Sprintf("Demonstrates proficiency in: %s.", strings.Join(matched, ", ")))
	}
	if len(res.MissingMustHave) > 0 {
		parts = append(parts, fmt.Sprintf("Missing critical requirements: %s.", strings.Join(res.MissingMustHave, ", ")))
	}
	if n := len(res.MissingSkills); n > 0 && n <= 5 {
		parts = append(parts, fmt.Sprintf("Would benefit from experience in: %s.", strings.Join(res.MissingSkills, ", ")))
	}
	if res.ExperienceNote != "" {
		parts = append(parts, fmt.Sprintf("Experience note: %s.", res.ExperienceNote))
	}

	return strings.Join(parts, " ")
}

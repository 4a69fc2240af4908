package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/screening"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSession(w io.Writer, s *screening.Session, format string) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, s)
	case OutputTable, "":
		return printRanking(w, s)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printRanking(w io.Writer, s *screening.Session) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "RANK\tCANDIDATE\tSCORE\tVERDICT\tMATCHED\tMISSING\tRED FLAGS")
	for i, r := range s.Results {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1,
			r.CandidateName,
			r.FinalScore,
			r.Verdict,
			orDash(matchedNames(r.MatchedSkills)),
			orDash(append(append([]string{}, r.MissingSkills...), r.MissingMustHave...)),
			orDash(flagNames(r.RedFlags)),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", sk.Name, sk.Reason)
	}

	sum := s.Summary
	fmt.Fprintf(w, "\ncandidates: %d  average: %.2f  top: %s (%.2f)  >=75: %d  >=50: %d\n",
		sum.TotalCandidates, sum.AverageScore, sum.TopCandidate, sum.TopScore, sum.CandidatesAbove75, sum.CandidatesAbove50)
	fmt.Fprintf(w, "similarity backend: %s\n", s.Backend)
	if s.ID != "" {
		fmt.Fprintf(w, "session: %s\n", s.ID)
	}

	return nil
}

func printCandidate(w io.Writer, r scoring.MatchResult) error {
	fmt.Fprintf(w, "%s: %.2f (%s)\n", r.CandidateName, r.FinalScore, r.Verdict)
	fmt.Fprintf(w, "%s\n\n", r.Recommendation)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range scoring.Dimensions {
		fmt.Fprintf(tw, "  %s\t%.2f\tx %.2f\n", d, r.SubScores[d], scoring.Weight(d))
	}
	fmt.Fprintf(tw, "  must-have penalty\t-%.2f\t\n", r.Breakdown.MustHavePenalty)
	fmt.Fprintf(tw, "  red flag penalty\t-%.2f\t\n", r.Breakdown.RedFlagPenalty)
	if err := tw.Flush(); err != nil {
		return err
	}

	matched := make([]string, 0, len(r.MatchedSkills))
	for _, m := range r.MatchedSkills {
		if m.JDSkill == m.CVSkill {
			matched = append(matched, fmt.Sprintf("%s (%s)", m.JDSkill, m.Kind))
			continue
		}
		matched = append(matched, fmt.Sprintf("%s ~ %s %.2f (%s)", m.JDSkill, m.CVSkill, m.Score, m.Kind))
	}

	fmt.Fprintln(w)
	printList(w, "matched", matched)
	printList(w, "missing", r.MissingSkills)
	printList(w, "missing must-have", r.MissingMustHave)
	printList(w, "red flags", flagNames(r.RedFlags))
	printList(w, "strengths", r.Strengths)
	printList(w, "weaknesses", r.Weaknesses)
	printList(w, "achievements", r.Achievements)
	if r.ExperienceNote != "" {
		fmt.Fprintf(w, "experience: %s\n", r.ExperienceNote)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", r.Remarks)
	return err
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(items, ", "))
}

func matchedNames(matches []scoring.SkillMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.JDSkill)
	}
	return out
}

func flagNames(flags []profile.RedFlagKind) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, string(f))
	}
	return out
}

func orDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

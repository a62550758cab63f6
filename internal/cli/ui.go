package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/coveredcall/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	bullishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	bearishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func stanceStyle(s models.Stance) lipgloss.Style {
	switch s {
	case models.StanceBullish:
		return bullishStyle
	case models.StanceBearish:
		return bearishStyle
	}
	return neutralStyle
}

// renderReport prints the human-readable report for --output=pretty.
func renderReport(r *models.Report) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Covered-Call Fundamentals: %s", r.Ticker)))
	fmt.Printf("%s %s  %s %s  %s %.2f\n",
		sectionStyle.Render("Stance:"), stanceStyle(r.Stance).Render(string(r.Stance)),
		sectionStyle.Render("Bias:"), string(r.CoveredCallBias),
		sectionStyle.Render("Confidence:"), r.Confidence)
	fmt.Printf("%s %s — %s\n", sectionStyle.Render("Action:"), r.Action, r.ActionReason)

	if len(r.KeyPoints) > 0 {
		fmt.Println(sectionStyle.Render("\nKey points"))
		for i, p := range r.KeyPoints {
			fmt.Printf("  %d. %s\n", i+1, p)
		}
	}
	if len(r.Risks) > 0 {
		fmt.Println(sectionStyle.Render("\nRisks"))
		for _, risk := range r.Risks {
			fmt.Printf("  - %s\n", risk)
		}
	}

	if r.Appendix != nil {
		if d := r.Appendix.Divergence; d != nil {
			fmt.Println(sectionStyle.Render("\nDivergence"))
			fmt.Printf("  score=%.3f severity=%s material=%t\n", d.Score, d.Severity, d.Material)
			fmt.Printf("  %s\n", dimStyle.Render(d.ActionHint))
		}
		if db := r.Appendix.Debate; db != nil {
			fmt.Println(sectionStyle.Render("\nDebate"))
			fmt.Printf("  Bull: %s (%.2f) %s\n", db.Bull.Stance, db.Bull.Confidence, strings.Join(db.Bull.Bullets, "; "))
			fmt.Printf("  Bear: %s (%.2f) %s\n", db.Bear.Stance, db.Bear.Confidence, strings.Join(db.Bear.Bullets, "; "))
			for _, s := range db.Synthesis {
				fmt.Printf("  = %s\n", s)
			}
		}
	}
}

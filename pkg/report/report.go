// Package report prints the console summary of a survey.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"q47-expsums/pkg/stats"
)

const (
	labelWidth = 30
	valueWidth = 10
)

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder(), true, false).
	Padding(0, 2)

// Banner writes the title block shown at the start of a run.
func Banner(w io.Writer, lines ...string) {
	fmt.Fprintln(w, bannerStyle.Render(strings.Join(lines, "\n")))
	fmt.Fprintln(w)
}

// Excluded is a summary computed without one prime.
type Excluded struct {
	P       uint32
	Summary stats.Summary
}

// Reference is a predicted mean of |S_p|/sqrt(p).
type Reference struct {
	Name string
	Mean float64
}

// dotted pads label with dots to the label column width.
func dotted(label string) string {
	if n := labelWidth - len(label); n > 0 {
		return label + strings.Repeat(".", n)
	}
	return label
}

func row(w io.Writer, label string, value string) {
	fmt.Fprintf(w, "%s %*s\n", dotted(label), valueWidth, value)
}

func float(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// Statistics writes the fixed-format statistics block.
func Statistics(w io.Writer, all stats.Summary, excluded ...Excluded) {
	fmt.Fprintf(w, "%-*s %*s\n", labelWidth, "Statistic", valueWidth, "Value")
	fmt.Fprintln(w, strings.Repeat("-", labelWidth+valueWidth+2))
	row(w, "N", fmt.Sprint(all.N))
	row(w, "Mean |S_p|/sqrt(p)", float(all.Mean))
	row(w, "Max  |S_p|/sqrt(p)", float(all.Max))
	row(w, "Max at p =", fmt.Sprint(all.MaxAt))
	row(w, "Min  |S_p|/sqrt(p)", float(all.Min))
	row(w, "Min at p =", fmt.Sprint(all.MinAt))
	row(w, "Median |S_p|/sqrt(p)", float(all.Median))
	row(w, "Std dev |S_p|/sqrt(p)", float(all.StdDev))

	for _, ex := range excluded {
		row(w, fmt.Sprintf("Mean (excl. p=%d)", ex.P), float(ex.Summary.Mean))
		row(w, fmt.Sprintf("Max  (excl. p=%d)", ex.P), float(ex.Summary.Max))
	}
}

// References writes the predicted means next to the observed one.
func References(w io.Writer, refs []Reference, observed float64) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reference predictions:")

	width := len("Observed:")
	for _, r := range refs {
		if n := len(r.Name) + 1; n > width {
			width = n
		}
	}
	for _, r := range refs {
		fmt.Fprintf(w, "  %-*s ≈ %.2f\n", width, r.Name+":", r.Mean)
	}
	fmt.Fprintf(w, "  %-*s ≈ %.2f\n", width, "Observed:", observed)
}

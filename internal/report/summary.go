package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/health"
	"codeberg.org/mutker/hwhealth/internal/prediction"
)

func writeSummary(w io.Writer, r engine.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "HEALTH SUMMARY\n%s\n\n", strings.Repeat("=", 20))

	if r.Overall == nil {
		fmt.Fprintln(bw, "No components analyzed")
		return bw.Flush()
	}

	fmt.Fprintf(bw, "Overall: %s\n", overallStatus(*r.Overall))
	fmt.Fprintf(bw, "Score: %.1f%%\n\n", r.Overall.MeanScore)

	components := make([]health.ComponentHealth, len(r.Components))
	copy(components, r.Components)
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].ID < components[j].ID
	})
	for _, c := range components {
		fmt.Fprintf(bw, "[%s] %s: %.0f%%\n", componentStatus(c), c.ID.Title(), c.Score)
	}

	if n := prediction.HighRiskCount(r.Predictions); n > 0 {
		fmt.Fprintf(bw, "\n%d component(s) at high failure risk\n", n)
	}

	return bw.Flush()
}

// SummaryLine is a single-line digest used in watch mode logs.
func SummaryLine(r engine.Result) string {
	if r.Overall == nil {
		return "no components analyzed"
	}

	parts := make([]string, 0, len(r.Components))
	for _, c := range r.Components {
		parts = append(parts, fmt.Sprintf("%s=%.1f", c.ID, c.Score))
	}
	return fmt.Sprintf("%s %.1f%% (%s)", overallStatus(*r.Overall), r.Overall.MeanScore, strings.Join(parts, " "))
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/history"
	"gopkg.in/yaml.v3"
)

// WriteHistory renders stored scans, newest first. The text and summary
// formats print one row per scan.
func WriteHistory(w io.Writer, f Format, entries []history.Entry) error {
	errFactory := errors.New()

	if entries == nil {
		entries = []history.Entry{}
	}

	var err error
	switch f {
	case FormatText, FormatSummary, "":
		err = writeHistoryTable(w, entries)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(entries); err == nil {
			err = enc.Close()
		}
	default:
		return errFactory.WithMessage(ErrInvalidFormat, "history cannot be rendered as "+string(f))
	}

	if err != nil {
		return errFactory.Wrap(ErrRender, err)
	}
	return nil
}

func writeHistoryTable(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scans recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tHOST\tOVERALL\tCOMPONENTS")
	for _, e := range entries {
		overall := "-"
		if e.OverallScore != nil {
			overall = fmt.Sprintf("%.1f%% %s", *e.OverallScore, e.OverallStatus)
		}

		parts := make([]string, 0, len(e.Components))
		for _, c := range e.Components {
			parts = append(parts, fmt.Sprintf("%s=%.0f", c.Component, c.Score))
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(timeLayout), e.ID, e.Hostname, overall, strings.Join(parts, " "))
	}
	return tw.Flush()
}

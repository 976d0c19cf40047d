// Package report renders scan results as text, JSON, YAML or Prometheus
// exposition. Rendering is pure: timestamps come from the result.
package report

import (
	"encoding/json"
	"io"
	"strings"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText       Format = "text"
	FormatSummary    Format = "summary"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatPrometheus Format = "prometheus"
)

// Formats lists every supported output format.
func Formats() []Format {
	return []Format{FormatText, FormatSummary, FormatJSON, FormatYAML, FormatPrometheus}
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New().WithData(ErrInvalidFormat, s)
}

// ContentType returns the HTTP media type for f.
func ContentType(f Format) string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatPrometheus:
		return string(expfmt.NewFormat(expfmt.TypeTextPlain))
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r engine.Result) error {
	errFactory := errors.New()

	var err error
	switch f {
	case FormatText, "":
		err = writeText(w, r)
	case FormatSummary:
		err = writeSummary(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(NewView(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(NewView(r)); err == nil {
			err = enc.Close()
		}
	case FormatPrometheus:
		err = writePrometheus(w, r)
	default:
		return errFactory.WithData(ErrInvalidFormat, string(f))
	}

	if err != nil {
		return errFactory.Wrap(ErrRender, err).WithData(string(f))
	}
	return nil
}

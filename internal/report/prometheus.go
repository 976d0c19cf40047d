package report

import (
	"io"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/prediction"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "hwhealth"

var riskValue = map[prediction.RiskLevel]float64{
	prediction.RiskLow:    0,
	prediction.RiskMedium: 1,
	prediction.RiskHigh:   2,
}

type family struct {
	mf *dto.MetricFamily
}

func gaugeFamily(name, help string) *family {
	return &family{mf: &dto.MetricFamily{
		Name: proto.String(namespace + "_" + name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}}
}

// add appends a sample. labels alternates name, value.
func (f *family) add(value float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	f.mf.Metric = append(f.mf.Metric, m)
}

// Families converts a result into Prometheus metric families in a fixed
// order. Empty families are omitted.
func Families(r engine.Result) []*dto.MetricFamily {
	scanTime := gaugeFamily("scan_timestamp_seconds", "Unix time of the scan.")
	overall := gaugeFamily("overall_score", "Overall system health index (0-100).")
	score := gaugeFamily("component_score", "Health score per component (0-100).")
	fallback := gaugeFamily("component_fallback", "1 when the component score is a default because telemetry was unavailable.")
	used := gaugeFamily("storage_used_percent", "Used capacity per partition.")
	temp := gaugeFamily("sensor_temperature_celsius", "Current temperature per sensor.")
	remaining := gaugeFamily("prediction_remaining_years", "Estimated remaining life per wearing component.")
	risk := gaugeFamily("prediction_risk_level", "Failure risk per wearing component (0=LOW, 1=MEDIUM, 2=HIGH).")

	if !r.Timestamp.IsZero() {
		scanTime.add(float64(r.Timestamp.Unix()))
	}
	if r.Overall != nil {
		overall.add(round1(r.Overall.MeanScore))
	}

	for _, c := range r.Components {
		id := string(c.ID)
		score.add(round1(c.Score), "component", id)

		isFallback := 0.0
		if c.Fallback() {
			isFallback = 1
		}
		fallback.add(isFallback, "component", id)

		if c.Storage != nil {
			for _, d := range c.Storage.Devices {
				used.add(d.UsedPercent, "device", d.DeviceID, "mountpoint", d.MountPoint)
			}
		}
		if c.Temperature != nil {
			for _, s := range c.Temperature.Sensors {
				temp.add(s.CurrentC, "sensor", s.SensorID)
			}
		}
	}

	for _, p := range r.Predictions {
		remaining.add(p.RemainingYears, "component", string(p.ComponentID), "device", p.Device)
		risk.add(riskValue[p.Risk], "component", string(p.ComponentID), "device", p.Device)
	}

	var out []*dto.MetricFamily
	for _, f := range []*family{scanTime, overall, score, fallback, used, temp, remaining, risk} {
		if len(f.mf.Metric) > 0 {
			out = append(out, f.mf)
		}
	}
	return out
}

func writePrometheus(w io.Writer, r engine.Result) error {
	for _, mf := range Families(r) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

package ametrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHandler returns an http.Handler exposing every counter and
// gauge in r as Prometheus gauges, snapshotted on each scrape. Histograms
// are exported as their count/sum/min/max/mean fields. This is optional
// scaffolding gated behind Config.Metrics; the renderer and session
// cores never depend on it directly, only on DefaultRegistry.
func PrometheusHandler(r *Registry) http.Handler {
	reg := prometheus.NewRegistry()
	collector := &snapshotCollector{registry: r}
	reg.MustRegister(collector)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// snapshotCollector adapts a Registry snapshot to prometheus.Collector on
// every scrape, avoiding the need to keep a parallel set of
// prometheus.Gauge/Counter objects in sync with ametrics' own types.
type snapshotCollector struct {
	registry *Registry
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	// Dynamic metric set: descriptions are emitted lazily in Collect.
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	for name, v := range c.registry.Snapshot() {
		switch val := v.(type) {
		case int64:
			desc := prometheus.NewDesc(sanitizeName(name), name, nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(val))
		case map[string]interface{}:
			for field, fv := range val {
				var f float64
				switch x := fv.(type) {
				case float64:
					f = x
				case int64:
					f = float64(x)
				default:
					continue
				}
				desc := prometheus.NewDesc(sanitizeName(name+"_"+field), name+" "+field, nil, nil)
				ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, f)
			}
		}
	}
}

// sanitizeName replaces the dotted ametrics naming convention ("render.frames")
// with Prometheus' preferred underscore convention ("render_frames").
func sanitizeName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out[i] = '_'
		} else {
			out[i] = name[i]
		}
	}
	return "asciichat_" + string(out)
}

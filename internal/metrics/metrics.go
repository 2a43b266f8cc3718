// Package metrics exposes pipeline run counters in a prometheus registry and writes
// them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"recipepipe/internal/normalizer"
	"recipepipe/internal/validator"
)

const namespace = "recipepipe"

// Metrics holds the gauges of one pipeline run.
type Metrics struct {
	registry        *prometheus.Registry
	documentsLoaded *prometheus.GaugeVec
	rowsDropped     *prometheus.GaugeVec
	repairs         *prometheus.GaugeVec
	records         *prometheus.GaugeVec
	stageDuration   *prometheus.GaugeVec
}

// New creates a metrics set on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents_loaded",
			Help:      "Raw documents loaded per collection.",
		}, []string{"collection"}),
		rowsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_dropped",
			Help:      "Input rows dropped during normalization, by reason.",
		}, []string{"reason"}),
		repairs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_repairs",
			Help:      "Field values repaired during normalization.",
		}, []string{"field", "reason"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validated_records",
			Help:      "Validated records per relation and verdict.",
		}, []string{"relation", "verdict"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
		}, []string{"stage"}),
	}

	m.registry.MustRegister(m.documentsLoaded, m.rowsDropped, m.repairs, m.records, m.stageDuration)

	return m
}

// RecordLoaded sets the number of documents loaded for a collection.
func (m *Metrics) RecordLoaded(collection string, n int) {
	m.documentsLoaded.WithLabelValues(collection).Set(float64(n))
}

// RecordNormalize records drop and repair counts.
func (m *Metrics) RecordNormalize(res *normalizer.Result) {
	if res == nil {
		return
	}

	for reason, n := range res.Stats.Dropped {
		m.rowsDropped.WithLabelValues(reason).Set(float64(n))
	}

	for key, n := range res.Repairs {
		field, reason, _ := strings.Cut(key, "/")
		m.repairs.WithLabelValues(field, reason).Set(float64(n))
	}
}

// RecordValidation records valid and invalid counts per relation.
func (m *Metrics) RecordValidation(rep *validator.Report) {
	if rep == nil {
		return
	}

	for relation, r := range map[string]validator.RelationReport{
		"recipes":      rep.Recipes,
		"interactions": rep.Interactions,
		"users":        rep.Users,
	} {
		m.records.WithLabelValues(relation, "valid").Set(float64(r.Valid))
		m.records.WithLabelValues(relation, "invalid").Set(float64(r.Invalid))
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Time runs fn and records its duration under stage.
func (m *Metrics) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.ObserveStage(stage, time.Since(start))

	return err
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}

// Names returns the metric family names currently gathered, sorted.
func (m *Metrics) Names() ([]string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}

	sort.Strings(names)

	return names, nil
}

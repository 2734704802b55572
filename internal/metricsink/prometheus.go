// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package metricsink

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auroraops/restore-pipeline/internal/model"
)

// labelNames are the dimensions the original's CloudWatch Metric carries
// (operation_id, environment). Prometheus users would normally avoid a
// per-operation label for cardinality reasons, but OperationId is a
// required dimension here, so it is kept; callers that run at very high
// operation volume should scrape-and-drop or relabel downstream.
var labelNames = []string{"operation_id", "environment"}

// Prometheus is a Sink that lazily registers one CounterVec (Count unit) or
// GaugeVec (Seconds unit) per distinct metric name, in the style of
// cuemby-warren's pkg/metrics package. Those vectors are static package
// vars there, but this sink's metric names are open-ended (one per step),
// so registration happens on first use instead.
type Prometheus struct {
	namespace string

	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	registry *prometheus.Registry
}

// NewPrometheus constructs a Sink backed by its own registry (so tests and
// multiple pipeline instances don't collide on the global default
// registry).
func NewPrometheus(namespace string) *Prometheus {
	return &Prometheus{
		namespace: namespace,
		counters:  map[string]*prometheus.CounterVec{},
		gauges:    map[string]*prometheus.GaugeVec{},
		registry:  prometheus.NewRegistry(),
	}
}

// Handler exposes the registry over HTTP for scraping.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Update records metric, creating and registering its vector on first use.
func (p *Prometheus) Update(ctx context.Context, metric model.Metric) error {
	name := sanitizeName(metric.Name)
	labels := prometheus.Labels{"operation_id": metric.OperationID, "environment": metric.Environment}

	switch metric.Unit {
	case model.UnitSeconds:
		gauge, err := p.gaugeVec(name, metric.Namespace)
		if err != nil {
			return err
		}
		gauge.With(labels).Set(metric.Value)
	default:
		counter, err := p.counterVec(name, metric.Namespace)
		if err != nil {
			return err
		}
		counter.With(labels).Add(metric.Value)
	}
	return nil
}

func (p *Prometheus) counterVec(name, namespace string) (*prometheus.CounterVec, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c, nil
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.effectiveNamespace(namespace),
		Name:      name,
		Help:      fmt.Sprintf("aurora-restore-pipeline metric %s", name),
	}, labelNames)
	if err := p.registry.Register(c); err != nil {
		return nil, fmt.Errorf("registering counter %s: %w", name, err)
	}
	p.counters[name] = c
	return c, nil
}

func (p *Prometheus) gaugeVec(name, namespace string) (*prometheus.GaugeVec, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.gauges[name]; ok {
		return g, nil
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: p.effectiveNamespace(namespace),
		Name:      name,
		Help:      fmt.Sprintf("aurora-restore-pipeline metric %s", name),
	}, labelNames)
	if err := p.registry.Register(g); err != nil {
		return nil, fmt.Errorf("registering gauge %s: %w", name, err)
	}
	p.gauges[name] = g
	return g, nil
}

func (p *Prometheus) effectiveNamespace(namespace string) string {
	if namespace != "" {
		return namespace
	}
	return p.namespace
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

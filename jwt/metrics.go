// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for key set resolution.  A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	keySetRefreshes *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	unknownKeyIDs   prometheus.Counter
}

// NewMetrics creates the metrics and registers them with registry when it's
// not nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		keySetRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasis",
				Name:      "jwks_refresh_total",
				Help:      "Total number of JWKS downloads by outcome",
			},
			[]string{"status"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasis",
				Name:      "jwks_cache_lookups_total",
				Help:      "Total number of JWKS cache lookups by result",
			},
			[]string{"result"},
		),
		unknownKeyIDs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "oasis",
				Name:      "jwks_unknown_kid_total",
				Help:      "Total number of key ids rejected without a refresh",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.keySetRefreshes,
			m.cacheLookups,
			m.unknownKeyIDs,
		)
	}
	return m
}

// RecordRefresh records a JWKS download.
func (m *Metrics) RecordRefresh(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.keySetRefreshes.WithLabelValues(status).Inc()
}

// RecordCacheLookup records whether the cached key set was found.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordUnknownKeyID records a kid rejected inside the freshness delay.
func (m *Metrics) RecordUnknownKeyID() {
	if m == nil {
		return
	}
	m.unknownKeyIDs.Inc()
}

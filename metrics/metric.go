// Copyright 2024 The DLite-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package metrics exposes the prometheus instrumentation shared by the
// storage, datamodel and instance packages.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Registry is the prometheus registry every dlite-go metric is
	// registered against. Embedding applications can serve it
	// themselves with promhttp.HandlerFor(metrics.Registry, ...).
	Registry = prometheus.NewRegistry()

	// PluginResolutions counts storage plugin resolution attempts by
	// driver name and outcome ("registered", "loaded-by-name",
	// "loaded-by-scan", "not-found").
	PluginResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlite",
			Subsystem: "registry",
			Name:      "plugin_resolutions_total",
			Help:      "Storage driver plugin resolutions by driver name and outcome.",
		},
		[]string{"driver", "outcome"},
	)

	// InstancesLive is the number of instances currently allocated for
	// a given entity uri, incremented by Create/Load and decremented
	// by Free.
	InstancesLive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dlite",
			Subsystem: "instance",
			Name:      "live",
			Help:      "Number of live instances per entity uri.",
		},
		[]string{"entity_uri"},
	)

	// EntityRefcount mirrors an entity's current reference count.
	EntityRefcount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dlite",
			Subsystem: "metadata",
			Name:      "entity_refcount",
			Help:      "Current reference count per entity uri.",
		},
		[]string{"entity_uri"},
	)

	// DriverDuration times every call dispatched across the
	// StoragePlugin boundary, by driver name and operation.
	DriverDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlite",
			Subsystem: "driver",
			Name:      "call_duration_seconds",
			Help:      "Latency of calls dispatched to a storage driver.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)
)

func init() {
	Registry.MustRegister(
		PluginResolutions,
		InstancesLive,
		EntityRefcount,
		DriverDuration,
	)
}

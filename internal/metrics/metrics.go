// Package metrics exposes Prometheus collectors for the record store.
// They are fed by an ordinary store subscription, so the store itself
// knows nothing about Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// Collectors groups the store metrics.
type Collectors struct {
	Records   prometheus.Gauge
	Active    prometheus.Gauge
	Changes   *prometheus.CounterVec
	LoadState *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "students_records",
			Help: "Number of student records currently held by the store.",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "students_active_records",
			Help: "Number of student records with status active.",
		}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "students_store_changes_total",
			Help: "Snapshots published by the store, by operation.",
		}, []string{"op"}),
		LoadState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "students_store_load_state",
			Help: "1 for the store's current load status, 0 for the others.",
		}, []string{"status"}),
	}

	for _, col := range []prometheus.Collector{c.Records, c.Active, c.Changes, c.LoadState} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	c.setLoadState(storage.LoadPending)
	return c, nil
}

// Observe subscribes the collectors to store and seeds them from its
// current snapshot. Call the returned func to stop observing.
func (c *Collectors) Observe(store storage.Storage) (unsubscribe func()) {
	c.update(store.Snapshot())
	return store.Subscribe(func(snap storage.Snapshot, change storage.Change) {
		c.Changes.WithLabelValues(string(change.Op)).Inc()
		c.update(snap)
	})
}

func (c *Collectors) update(snap storage.Snapshot) {
	active := 0
	for _, r := range snap.Records {
		if r.Status == types.StatusActive {
			active++
		}
	}
	c.Records.Set(float64(snap.Len()))
	c.Active.Set(float64(active))
	c.setLoadState(snap.Status)
}

func (c *Collectors) setLoadState(current storage.LoadStatus) {
	for _, st := range []storage.LoadStatus{storage.LoadPending, storage.LoadReady, storage.LoadFailed} {
		v := 0.0
		if st == current {
			v = 1
		}
		c.LoadState.WithLabelValues(st.String()).Set(v)
	}
}

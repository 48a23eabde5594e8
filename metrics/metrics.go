// Package metrics collects Prometheus metrics for the lending service.
package metrics

import (
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"library-lending/library"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collector implements library.MetricsRecorder on top of Prometheus.
type Collector struct {
	operations  *prometheus.CounterVec
	books       prometheus.Gauge
	users       prometheus.Gauge
	activeLoans prometheus.Gauge
}

var _ library.MetricsRecorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_operations_total",
			Help: "Mutating library operations by outcome.",
		}, []string{"operation", "outcome"}),
		books: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_books",
			Help: "Books in the catalogue.",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_users",
			Help: "Registered users.",
		}),
		activeLoans: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_active_loans",
			Help: "Books currently on loan.",
		}),
	}

	reg.MustRegister(c.operations, c.books, c.users, c.activeLoans)
	return c
}

// RecordOperation counts one operation under the outcome derived from err.
func (c *Collector) RecordOperation(op string, err error) {
	c.operations.WithLabelValues(op, outcomeOf(err)).Inc()
}

// SetInventory updates the inventory gauges.
func (c *Collector) SetInventory(books, users, activeLoans int) {
	c.books.Set(float64(books))
	c.users.Set(float64(users))
	c.activeLoans.Set(float64(activeLoans))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, library.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, library.ErrBusinessRule):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// WriteText writes every metric family gathered from g in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

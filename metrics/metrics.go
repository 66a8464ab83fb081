// Package metrics exports the activity of emulated EEPROM drivers as
// Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/sequencer"
	"github.com/sarchlab/flexee/sim"
)

// Collector holds the metrics. It is a hook for drivers and a reporter for
// development and production errors.
type Collector struct {
	JobsTotal        *prometheus.CounterVec
	BytesTotal       *prometheus.CounterVec
	JobBytes         *prometheus.HistogramVec
	Pending          *prometheus.GaugeVec
	DevErrorsTotal   *prometheus.CounterVec
	ProductionEvents *prometheus.CounterVec
	BrownOutsTotal   *prometheus.CounterVec
}

var _ report.Reporter = (*Collector)(nil)

// New creates the metrics and registers them.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eep_jobs_total",
				Help: "Number of jobs that reached a terminal result",
			},
			[]string{"driver", "kind", "result"},
		),
		BytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eep_bytes_total",
				Help: "Number of bytes moved by driver ticks",
			},
			[]string{"driver", "kind"},
		),
		JobBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eep_job_bytes",
				Help:    "Length of the accepted jobs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 7),
			},
			[]string{"driver", "kind"},
		),
		Pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eep_job_pending",
				Help: "1 while a driver has a pending job",
			},
			[]string{"driver"},
		),
		DevErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eep_dev_errors_total",
				Help: "Number of development errors reported",
			},
			[]string{"api", "error"},
		),
		ProductionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eep_production_events_total",
				Help: "Number of production error events reported",
			},
			[]string{"event", "status"},
		),
		BrownOutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eep_brown_outs_total",
				Help: "Brown-outs observed at initialization",
			},
			[]string{"driver", "class"},
		),
	}

	reg.MustRegister(
		c.JobsTotal,
		c.BytesTotal,
		c.JobBytes,
		c.Pending,
		c.DevErrorsTotal,
		c.ProductionEvents,
		c.BrownOutsTotal,
	)

	return c
}

type named interface {
	Name() string
}

// Func updates the job metrics from a driver hook.
func (c *Collector) Func(ctx sim.HookCtx) {
	driver := ""
	if n, ok := ctx.Domain.(named); ok {
		driver = n.Name()
	}

	info, _ := ctx.Item.(eep.JobInfo)
	kind := info.Kind.String()

	switch ctx.Pos {
	case eep.HookPosInit:
		code := ctx.Detail.(sequencer.BrownOut)
		if code != sequencer.BrownOutNone {
			c.BrownOutsTotal.WithLabelValues(driver, code.String()).Inc()
		}
	case eep.HookPosJobAccepted:
		c.Pending.WithLabelValues(driver).Set(1)
		c.JobBytes.WithLabelValues(driver, kind).Observe(float64(info.Length))
	case eep.HookPosTransfer:
		c.BytesTotal.WithLabelValues(driver, kind).Add(float64(ctx.Detail.(uint32)))
	case eep.HookPosJobDone:
		c.Pending.WithLabelValues(driver).Set(0)
		c.JobsTotal.WithLabelValues(driver, kind, info.Result.String()).Inc()
	}
}

// ReportError counts a development error.
func (c *Collector) ReportError(_ uint16, _ uint8, apiID, errorID uint8) {
	c.DevErrorsTotal.WithLabelValues(
		eep.ServiceID(apiID).String(),
		eep.ErrorCode(errorID).String(),
	).Inc()
}

// ReportErrorStatus counts a production event.
func (c *Collector) ReportErrorStatus(eventID uint16, status report.EventStatus) {
	c.ProductionEvents.WithLabelValues(
		strconv.Itoa(int(eventID)),
		status.String(),
	).Inc()
}

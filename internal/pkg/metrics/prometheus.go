package metrics

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes reconciliation run metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	recordsTotal    *prometheus.CounterVec
	lastRunRecords  *prometheus.GaugeVec
	manualTotal     *prometheus.CounterVec
	cronTicksTotal  *prometheus.CounterVec
	cronTickSeconds *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_reconcile_runs_total",
			Help: "Total reconciliation runs by outcome (success, failure, before_cutoff).",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_reconcile_run_duration_seconds",
			Help:    "Duration of reconciliation runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_reconcile_records_total",
			Help: "Attendance records handled by reconciliation, by result (successful, failed, skipped).",
		}, []string{"result"}),
		lastRunRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "attendance_reconcile_last_run_records",
			Help: "Record counts of the most recent reconciliation run.",
		}, []string{"result"}),
		manualTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_manual_absence_total",
			Help: "Manual absence corrections by outcome (applied, rejected).",
		}, []string{"outcome"}),
		cronTicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_ticks_total",
			Help: "Scheduler ticks by job and status (success, error, skipped, lock_error).",
		}, []string{"job_name", "status"}),
		cronTickSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Duration of scheduler job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name"}),
	}

	registry.MustRegister(r.runsTotal)
	registry.MustRegister(r.runDuration)
	registry.MustRegister(r.recordsTotal)
	registry.MustRegister(r.lastRunRecords)
	registry.MustRegister(r.manualTotal)
	registry.MustRegister(r.cronTicksTotal)
	registry.MustRegister(r.cronTickSeconds)

	return r
}

// Registry returns the Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRun records one reconciliation run. beforeCutoff marks runs that did no work.
func (r *Recorder) ObserveRun(result attendance.ReconcileResult, beforeCutoff bool, duration time.Duration) {
	outcome := "success"
	switch {
	case !result.Success:
		outcome = "failure"
	case beforeCutoff:
		outcome = "before_cutoff"
	}

	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	if beforeCutoff {
		return
	}

	r.recordsTotal.WithLabelValues("successful").Add(float64(result.Summary.Successful))
	r.recordsTotal.WithLabelValues("failed").Add(float64(result.Summary.Failed))
	r.recordsTotal.WithLabelValues("skipped").Add(float64(result.Summary.Skipped))

	r.lastRunRecords.WithLabelValues("found").Set(float64(result.Summary.TotalRecordsFound))
	r.lastRunRecords.WithLabelValues("successful").Set(float64(result.Summary.Successful))
	r.lastRunRecords.WithLabelValues("failed").Set(float64(result.Summary.Failed))
	r.lastRunRecords.WithLabelValues("skipped").Set(float64(result.Summary.Skipped))
}

// ObserveManual records one manual correction attempt.
func (r *Recorder) ObserveManual(applied bool) {
	if applied {
		r.manualTotal.WithLabelValues("applied").Inc()
		return
	}
	r.manualTotal.WithLabelValues("rejected").Inc()
}

// ObserveJobTick records one scheduler tick.
func (r *Recorder) ObserveJobTick(jobName, status string, duration time.Duration) {
	r.cronTicksTotal.WithLabelValues(jobName, status).Inc()
	if status != "skipped" {
		r.cronTickSeconds.WithLabelValues(jobName).Observe(duration.Seconds())
	}
}

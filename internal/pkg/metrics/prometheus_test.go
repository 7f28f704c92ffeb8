package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/cron"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()

	result := attendance.NewReconcileResult()
	result.Success = true
	result.Summary = attendance.ReconcileSummary{TotalRecordsFound: 4, Successful: 2, Failed: 1, Skipped: 1}
	r.ObserveRun(result, false, 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("successful")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("failed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.lastRunRecords.WithLabelValues("found")))

	r.ObserveRun(attendance.ReconcileResult{Success: true}, true, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("before_cutoff")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("successful")))

	r.ObserveRun(attendance.ReconcileResult{Success: false}, false, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("failure")))
}

func TestRecorder_ObserveManualAndTicks(t *testing.T) {
	r := NewRecorder()

	r.ObserveManual(true)
	r.ObserveManual(false)
	r.ObserveManual(false)
	r.ObserveJobTick(cron.MarkAbsentJobName, cron.TickSuccess, time.Second)
	r.ObserveJobTick(cron.MarkAbsentJobName, cron.TickSkipped, 0)
	r.ObserveJobTick(cron.MarkAbsentJobName, cron.TickLockError, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.manualTotal.WithLabelValues("applied")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.manualTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cronTicksTotal.WithLabelValues(cron.MarkAbsentJobName, cron.TickSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cronTicksTotal.WithLabelValues(cron.MarkAbsentJobName, cron.TickLockError)))
}

func TestRecorder_TickHelpListsSchedulerStatuses(t *testing.T) {
	r := NewRecorder()
	r.ObserveJobTick(cron.MarkAbsentJobName, cron.TickSuccess, time.Second)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, status := range []string{cron.TickSuccess, cron.TickError, cron.TickSkipped, cron.TickLockError} {
		assert.Contains(t, body, status)
	}
	assert.NotContains(t, body, "(ok,")
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveManual(true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_manual_absence_total")
}

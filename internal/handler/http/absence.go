package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/report"
)

type AbsenceHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	ExportPreview(w http.ResponseWriter, r *http.Request)
	Run(w http.ResponseWriter, r *http.Request)
	MarkManual(w http.ResponseWriter, r *http.Request)
}

type absenceHandlerImpl struct {
	absenceService attendance.AbsenceService
}

func NewAbsenceHandler(absenceService attendance.AbsenceService) AbsenceHandler {
	return &absenceHandlerImpl{
		absenceService: absenceService,
	}
}

// Preview implements AbsenceHandler.
func (h *absenceHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	targetDate, err := attendance.ParseTargetDate(r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	preview, err := h.absenceService.GetAbsenceMarkingPreview(r.Context(), targetDate)
	if err != nil {
		slog.Error("Failed to build absence preview", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, preview)
}

// ExportPreview implements AbsenceHandler.
func (h *absenceHandlerImpl) ExportPreview(w http.ResponseWriter, r *http.Request) {
	targetDate, err := attendance.ParseTargetDate(r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	preview, err := h.absenceService.GetAbsenceMarkingPreview(r.Context(), targetDate)
	if err != nil {
		slog.Error("Failed to build absence preview", "error", err)
		response.HandleError(w, err)
		return
	}

	// Render fully before writing headers so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := report.WritePreviewXLSX(&buf, preview); err != nil {
		slog.Error("Failed to render absence preview workbook", "error", err)
		response.InternalServerError(w, "Failed to export preview")
		return
	}

	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.PreviewFileName(preview)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write absence preview workbook", "error", err)
	}
}

// Run implements AbsenceHandler.
func (h *absenceHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req attendance.RunAbsenceRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	targetDate, err := req.TargetDate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := h.absenceService.MarkAbsentForMissingCheckout(r.Context(), targetDate)
	if !result.Success {
		message := "Absence marking failed"
		if len(result.Errors) > 0 {
			message = result.Errors[0].Error
		}
		response.Failed(w, message, result)
		return
	}

	response.SuccessWithMessage(w, "Absence marking completed", result)
}

// MarkManual implements AbsenceHandler.
func (h *absenceHandlerImpl) MarkManual(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode manual absence request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.IPAddress = clientIP(r)
	req.UserAgent = r.UserAgent()

	result, err := h.absenceService.MarkEmployeeAbsentForMissingCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Success {
		response.Conflict(w, result.Message)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// decodeOptionalJSON accepts an empty body as the zero value.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

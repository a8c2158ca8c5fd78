package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"myxpicks/internal/dataprocessing"
	apierrors "myxpicks/internal/errors"
	"myxpicks/internal/files"
	"myxpicks/internal/middleware"
	"myxpicks/internal/services"
	"myxpicks/pkg/contracts/domain"
)

// PicksServiceInterface is the part of the picks service the handlers use.
type PicksServiceInterface interface {
	Latest(ctx context.Context) (domain.Snapshot, error)
	Snapshot(ctx context.Context, dateCode string) (domain.Snapshot, error)
	History(ctx context.Context) (domain.HistoryIndex, error)
	Weekly(ctx context.Context) (domain.WeeklySummary, error)
	WeeklyHTML(ctx context.Context) ([]byte, error)
	Export(ctx context.Context, format services.ExportFormat, w io.Writer) (string, error)
	Refresh(ctx context.Context) (services.RefreshResult, error)
}

// PicksHandler serves the picks API with RFC 7807 errors.
type PicksHandler struct {
	service        PicksServiceInterface
	refreshTimeout time.Duration
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewPicksHandler creates a picks handler. Refreshes started over HTTP run
// detached from the request for at most refreshTimeout.
func NewPicksHandler(service PicksServiceInterface, refreshTimeout time.Duration, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PicksHandler {
	return &PicksHandler{
		service:        service,
		refreshTimeout: refreshTimeout,
		logger:         logger.With(slog.String("component", "picks_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the picks routes
func (h *PicksHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/latest", h.GetLatest)
	r.Get("/history", h.GetHistory)
	r.Get("/history/{date}", h.GetSnapshot)
	r.Get("/weekly", h.GetWeekly)
	r.Get("/export", h.Export)
	r.Post("/refresh", h.Refresh)

	return r
}

// GetLatest handles GET /api/picks/latest
func (h *PicksHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Latest(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	render.JSON(w, r, snapshot)
}

// GetHistory handles GET /api/picks/history
func (h *PicksHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	index, err := h.service.History(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, index)
}

// GetSnapshot handles GET /api/picks/history/{date}
func (h *PicksHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, snapshot)
}

// GetWeekly handles GET /api/picks/weekly
func (h *PicksHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Weekly(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Export handles GET /api/picks/export?format=csv|xlsx|json
func (h *PicksHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	format, ok := services.ParseExportFormat(name)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormatError(name))
		return
	}

	// Buffer the file so a failure can still be answered with a problem response.
	var buf bytes.Buffer
	date, err := h.service.Export(r.Context(), format, &buf)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(date)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

const refreshWriteSlack = 5 * time.Second

type refreshResponse struct {
	services.RefreshResult
	DurationMS int64 `json:"duration_ms"`
}

// Refresh handles POST /api/picks/refresh
func (h *PicksHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	if h.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.refreshTimeout)
		defer cancel()
		// The refresh may outlive the server's write timeout.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(h.refreshTimeout + refreshWriteSlack))
	}

	h.logger.InfoContext(ctx, "refresh requested",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("remote_addr", r.RemoteAddr))

	result, err := h.service.Refresh(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, refreshResponse{
		RefreshResult: result,
		DurationMS:    result.Duration.Milliseconds(),
	})
}

func (h *PicksHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(r, err))
}

// mapServiceError maps service errors to API errors.
func mapServiceError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, services.ErrSnapshotNotFound):
		return apierrors.ErrNoSnapshot
	case errors.Is(err, services.ErrInvalidDate):
		return apierrors.ErrValidation("date", "date must be a YYYYMMDD calendar date")
	case errors.Is(err, services.ErrRefreshRunning):
		return apierrors.ErrRefreshRunning
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.UnsupportedFormatError(r.URL.Query().Get("format"))
	case errors.Is(err, dataprocessing.ErrNoPicks), errors.Is(err, dataprocessing.ErrEmptyReport):
		return apierrors.ErrNoPicks
	case errors.Is(err, files.ErrNoReportFound):
		return apierrors.ErrNoReport
	case errors.Is(err, dataprocessing.ErrNoWeeklyData):
		return apierrors.ErrNoWeeklyData
	default:
		return err
	}
}

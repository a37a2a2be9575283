package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reviewpulse/reviewpulse/internal/handler/dto"
	"github.com/reviewpulse/reviewpulse/internal/model"
	"github.com/reviewpulse/reviewpulse/internal/service"
	"github.com/reviewpulse/reviewpulse/internal/stats"
)

const dateLayout = "2006-01-02"

// StatisticsService computes statistics snapshots.
type StatisticsService interface {
	GetStatistics(ctx context.Context, surface string, filter model.StatisticsFilter) (*service.StatisticsResult, error)
}

// StatisticsHandler serves the dashboard statistics endpoints.
type StatisticsHandler struct {
	service         StatisticsService
	defaultTimeZone string
	logger          *slog.Logger
}

// NewStatisticsHandler creates a new StatisticsHandler.
// defaultTimeZone is used to read dates when a request has no tz parameter.
func NewStatisticsHandler(svc StatisticsService, defaultTimeZone string, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		service:         svc,
		defaultTimeZone: defaultTimeZone,
		logger:          logger.With("component", "handler.statistics"),
	}
}

// Overview handles GET /api/v1/statistics.
// Accepts optional client_id and repeated branch_id query parameters.
func (h *StatisticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	query := h.parseQuery(r)
	query.ClientID = r.URL.Query().Get("client_id")
	h.serve(w, r, service.SurfaceOverview, query)
}

// Client handles GET /api/v1/clients/{clientID}/statistics.
func (h *StatisticsHandler) Client(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Client ID is required")
		return
	}

	query := h.parseQuery(r)
	query.ClientID = clientID
	h.serve(w, r, service.SurfaceClient, query)
}

// Branch handles GET /api/v1/clients/{clientID}/branches/{branchID}/statistics.
func (h *StatisticsHandler) Branch(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	branchID := chi.URLParam(r, "branchID")
	if clientID == "" || branchID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Client ID and branch ID are required")
		return
	}

	query := h.parseQuery(r)
	query.ClientID = clientID
	query.BranchIDs = []string{branchID}
	h.serve(w, r, service.SurfaceBranch, query)
}

// parseQuery extracts the shared query parameters.
func (h *StatisticsHandler) parseQuery(r *http.Request) dto.StatisticsQuery {
	values := r.URL.Query()
	return dto.StatisticsQuery{
		BranchIDs: values["branch_id"],
		From:      values.Get("from"),
		To:        values.Get("to"),
		TimeZone:  values.Get("tz"),
	}
}

func (h *StatisticsHandler) serve(w http.ResponseWriter, r *http.Request, surface string, query dto.StatisticsQuery) {
	if err := validateStruct(query); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Invalid query parameters",
				Code:   "INVALID_REQUEST",
				Fields: verr.Fields(),
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	filter, err := h.buildFilter(query)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.GetStatistics(r.Context(), surface, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		h.logger.Error("failed to compute statistics",
			"surface", surface,
			"client_id", filter.ClientID,
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatisticsResponse(surface, query, result.Filter, result.Snapshot, result.Cached))
}

// buildFilter reads the query dates as calendar days in the requested zone.
// The inclusive to date becomes an exclusive bound at the next midnight.
func (h *StatisticsHandler) buildFilter(query dto.StatisticsQuery) (model.StatisticsFilter, error) {
	tz := query.TimeZone
	if tz == "" {
		tz = h.defaultTimeZone
	}
	loc, err := stats.LoadLocation(tz)
	if err != nil {
		return model.StatisticsFilter{}, err
	}

	filter := model.StatisticsFilter{
		ClientID:  query.ClientID,
		BranchIDs: query.BranchIDs,
		TimeZone:  loc.String(),
	}

	if query.From != "" {
		from, err := time.ParseInLocation(dateLayout, query.From, loc)
		if err != nil {
			return model.StatisticsFilter{}, err
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.ParseInLocation(dateLayout, query.To, loc)
		if err != nil {
			return model.StatisticsFilter{}, err
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	return filter, nil
}

// writeError writes a JSON error response.
func (h *StatisticsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

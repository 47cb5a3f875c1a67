package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/httputil"
)

func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get progress")
		return
	}
	q := r.URL.Query()
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	entries, err := s.progressService.GetProgress(ctx, uid, &service.ProgressQuery{
		HabitID:   q.Get("habitId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	})
	if err != nil {
		writeServiceError(w, logger, "get progress", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toProgressListResponse(entries))
}

func (s *Server) ToggleProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "toggle progress")
		return
	}
	var req ToggleRequest
	defer r.Body.Close()
	if err = httputil.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, logger, "toggle progress", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	progress, err := s.progressService.Toggle(ctx, uid, &service.ToggleRequest{
		HabitID: req.HabitID,
		Date:    req.Date,
		Notes:   req.Notes,
	})
	if err != nil {
		writeServiceError(w, logger, "toggle progress", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toProgressResponse(progress))
	logger.Info("progress toggled",
		slog.String("habit_id", req.HabitID),
		slog.Bool("completed", progress.Completed),
	)
}

func (s *Server) GetTodayProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get today progress")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	entries, err := s.progressService.GetToday(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get today progress", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toTodayResponse(entries))
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get stats")
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "days must be a number", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	stats, err := s.progressService.GetStats(ctx, uid, &service.StatsRequest{
		HabitID: r.URL.Query().Get("habitId"),
		Days:    days,
	})
	if err != nil {
		writeServiceError(w, logger, "get stats", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toStatsResponse(stats))
}

func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get calendar")
		return
	}
	year, yearErr := strconv.Atoi(r.PathValue("year"))
	month, monthErr := strconv.Atoi(r.PathValue("month"))
	if yearErr != nil || monthErr != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid year or month in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	entries, err := s.progressService.GetCalendar(ctx, uid, year, month, r.URL.Query().Get("habitId"))
	if err != nil {
		writeServiceError(w, logger, "get calendar", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toProgressListResponse(entries))
}

func (s *Server) DeleteProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "progress deletion")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid progress id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	if err = s.progressService.DeleteProgress(ctx, uid, id); err != nil {
		writeServiceError(w, logger, "progress deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Progress deleted successfully"})
	logger.Info("progress deleted")
}

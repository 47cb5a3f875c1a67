package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/httputil"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// queryInt returns 0 for an absent parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) GetHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get habits")
		return
	}
	q := r.URL.Query()
	req := service.ListHabitsRequest{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "active must be true or false", nil)
			return
		}
		req.Active = &active
	}
	if req.Limit, err = queryInt(r, "limit"); err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid limit", nil)
		return
	}
	if req.Offset, err = queryInt(r, "offset"); err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid offset", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	habits, err := s.habitService.GetUserHabits(ctx, uid, &req)
	if err != nil {
		writeServiceError(w, logger, "get habits", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toHabitsResponse(habits))
	logger.Info("habits provided")
}

func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "create habit")
		return
	}
	var req CreateHabitRequest
	defer r.Body.Close()
	if err = httputil.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, logger, "create habit", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	habit, err := s.habitService.CreateHabit(ctx, uid, &service.CreateHabitRequest{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		Category:    req.Category,
		Color:       req.Color,
	})
	if err != nil {
		writeServiceError(w, logger, "create habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, toHabitResponse(habit))
	logger.Info("habit created")
}

func (s *Server) GetHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get habit")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	habit, err := s.habitService.GetHabit(ctx, id, uid)
	if err != nil {
		writeServiceError(w, logger, "get habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toHabitResponse(habit))
}

func (s *Server) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "update habit")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	var req UpdateHabitRequest
	defer r.Body.Close()
	if err = httputil.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, logger, "update habit", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	habit, err := s.habitService.UpdateHabit(ctx, id, uid, &service.UpdateHabitRequest{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		Category:    req.Category,
		Color:       req.Color,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(w, logger, "update habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toHabitResponse(habit))
	logger.Info("habit updated")
}

func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "habit deletion")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Warn("habit deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	if err = s.habitService.DeleteHabit(ctx, id, uid); err != nil {
		writeServiceError(w, logger, "habit deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Habit deleted successfully"})
	logger.Info("habit deleted")
}

func (s *Server) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get categories")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	categories, err := s.habitService.GetCategories(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get categories", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, categories)
}

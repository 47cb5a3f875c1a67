package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/httputil"
)

func (s *Server) GetShareableStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get shareable stats")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	stats, err := s.shareService.GetShareableStats(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get shareable stats", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toShareableStatsResponse(stats))
}

func (s *Server) CreateShare(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "create share")
		return
	}
	var req CreateShareRequest
	defer r.Body.Close()
	// an empty body means all defaults
	if err = httputil.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		writeBadBody(w, logger, "create share", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	link, err := s.shareService.CreateShare(ctx, uid, &service.CreateShareRequest{
		Title:         req.Title,
		Description:   req.Description,
		IncludeStats:  req.IncludeStats,
		IncludeHabits: req.IncludeHabits,
		ExpiresInDays: req.ExpiresInDays,
	})
	if err != nil {
		writeServiceError(w, logger, "create share", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, toCreateShareResponse(link))
	logger.Info("share link created", slog.String("share_id", link.Share.ShareID))
}

// GetSharedProgress is public.
func (s *Server) GetSharedProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	shareID := r.PathValue("shareId")
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	view, err := s.shareService.GetSharedProgress(ctx, shareID)
	if err != nil {
		writeServiceError(w, logger, "get shared progress", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toSharedViewResponse(view))
}

func (s *Server) GetUserLinks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get share links")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	links, err := s.shareService.GetUserLinks(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get share links", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toShareLinksResponse(links))
}

func (s *Server) DeleteShare(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "share deletion")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	if err = s.shareService.DeleteShare(ctx, uid, r.PathValue("shareId")); err != nil {
		writeServiceError(w, logger, "share deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Shared link deleted successfully"})
	logger.Info("share link deleted")
}

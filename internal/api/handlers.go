package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/httputil"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, logger, "registering", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeServiceError(w, logger, "registering", err)
		return
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("registering error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, AuthResponse{
		Message: "Registration successful",
		Token:   token,
		User:    toUserResponse(user),
	})
	logger.Info("successful registration", slog.String("uid", user.ID.String()))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, logger, "login", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		logger.Warn("login error: missing credentials")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, logger, "login", err)
		return
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("login error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    toUserResponse(user),
	})
	logger.Info("successful login")
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeUnauthorized(w, logger, "get current user")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()
	user, err := s.userService.GetByID(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get current user", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]UserResponse{"user": toUserResponse(user)})
}

// Logout has nothing to revoke: tokens are stateless and expire on their own.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	GetLoggerFromCtx(r.Context()).Info("logged out")
	httputil.WriteJSONResponse(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/limbo/habitrack/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Timeout applied to every service call made by a handler.
const serviceTimeout = 10 * time.Second

type Server struct {
	mx              *chi.Mux
	userService     service.UserServiceI
	habitService    service.HabitsServiceI
	progressService service.ProgressServiceI
	shareService    service.ShareServiceI
	jwtService      JWTServiceI
	logger          *slog.Logger
	corsOrigins     []string
	now             func() time.Time
}

type ServicesList struct {
	UserService     service.UserServiceI
	HabitsService   service.HabitsServiceI
	ProgressService service.ProgressServiceI
	ShareService    service.ShareServiceI
	JwtService      JWTServiceI
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func New(servicesOptions *ServicesList, opts ...Option) *Server {
	s := &Server{
		mx:              chi.NewMux(),
		userService:     servicesOptions.UserService,
		habitService:    servicesOptions.HabitsService,
		progressService: servicesOptions.ProgressService,
		shareService:    servicesOptions.ShareService,
		jwtService:      servicesOptions.JwtService,
		logger:          slog.Default(),
		corsOrigins:     []string{"*"},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.mx
}

func (s *Server) routes() {
	s.mx.Use(middleware.Recoverer)
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Use(s.MetricsMiddleware)
	s.mx.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.mx.Get("/api/health", s.Health)
	s.mx.Handle("/metrics", promhttp.Handler())

	s.mx.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Get("/me", s.Me)
			r.Post("/logout", s.Logout)
		})
	})

	s.mx.Route("/api/habits", func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Get("/", s.GetHabits)
		r.Post("/", s.CreateHabit)
		r.Get("/categories", s.GetCategories)
		r.Get("/{id}", s.GetHabit)
		r.Put("/{id}", s.UpdateHabit)
		r.Delete("/{id}", s.DeleteHabit)
	})

	s.mx.Route("/api/progress", func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Get("/", s.GetProgress)
		r.Post("/toggle", s.ToggleProgress)
		r.Get("/today", s.GetTodayProgress)
		r.Get("/stats", s.GetStats)
		r.Get("/calendar/{year}/{month}", s.GetCalendar)
		r.Delete("/{id}", s.DeleteProgress)
	})

	s.mx.Route("/api/users", func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.UpdateProfile)
		r.Get("/dashboard", s.GetDashboard)
		r.Delete("/account", s.DeleteAccount)
	})

	s.mx.Route("/api/share", func(r chi.Router) {
		r.Get("/{shareId}", s.GetSharedProgress)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Get("/stats", s.GetShareableStats)
			r.Post("/create", s.CreateShare)
			r.Get("/user/links", s.GetUserLinks)
			r.Delete("/{shareId}", s.DeleteShare)
		})
	})
}

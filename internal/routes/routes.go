package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/handlers"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/web"
)

type Options struct {
	Config   *config.Config
	Logger   logger.Logger
	Sessions *services.SessionManager
	// Limiters are only applied in production; nil skips them.
	GlobalLimiter *middleware.LimiterRegistry
	LoginLimiter  *middleware.LimiterRegistry
}

// NewRouter builds the full middleware stack and route table.
func NewRouter(h *handlers.Handler, o Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(o.Logger))
	r.Use(middleware.Recover(o.Logger))

	if o.Config.IsProduction() && o.GlobalLimiter != nil && o.LoginLimiter != nil {
		for _, mw := range middleware.ProductionSecurity(o.Config.AllowedHost, o.GlobalLimiter, o.LoginLimiter) {
			r.Use(mw)
		}
	} else {
		r.Use(middleware.SecurityHeaders(false))
		if o.LoginLimiter != nil {
			r.Use(middleware.LoginRateLimit(o.LoginLimiter))
		}
	}

	// Health check and assets need no session.
	r.Get("/health", handlers.Health)
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(o.Sessions, o.Logger))
		SetupRoutes(r, h, middleware.NewAuth(o.Sessions, o.Logger), o.Config)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.LoadSession(o.Sessions, o.Logger)(http.HandlerFunc(h.NotFound)).ServeHTTP(w, req)
	})
	return r
}

func SetupRoutes(r chi.Router, h *handlers.Handler, auth *middleware.Auth, cfg *config.Config) {
	// Auth routes
	r.Get("/", h.LoginPage)
	r.Post("/", h.Login)
	r.Get("/signup", h.SignupPage)
	r.Post("/signup", h.Signup)
	r.Post("/logout", auth.RequireLogin(h.Logout))

	// Pages
	r.Get("/about", h.About)
	r.Get("/home", auth.RequireLogin(h.Home))
	r.Get("/daily_quote", auth.RequireLogin(h.DailyQuote))
	r.Get("/gratitude", auth.RequireLogin(h.Gratitude))

	// Journal entries
	r.Get("/entries", auth.RequireLogin(h.Entries))
	r.Get("/new_entry", auth.RequireLogin(h.NewEntryPage))
	r.Post("/new_entry", auth.RequireLogin(h.CreateEntry))
	r.Get("/edit_entry/{id}", auth.RequireLogin(h.EditEntry))

	// Hidden journal and step-up verification
	r.Get("/hidden_entries", auth.RequireLogin(h.HiddenEntries))
	r.Get("/verify_password", auth.RequireLogin(h.VerifyPasswordPage))
	r.Post("/verify_password", auth.RequireLogin(h.VerifyPassword))

	// Habits and moods
	r.Get("/habits", auth.RequireLogin(h.Habits))
	r.Post("/add_habit", auth.RequireLogin(h.AddHabit))
	r.Get("/moods", auth.RequireLogin(h.Moods))
	r.Post("/log_mood", auth.RequireLogin(h.LogMood))

	// Realtime activity feed
	r.Get("/ws/activity", auth.RequireAPILogin(h.ActivityWebSocket))

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
		r.Get("/entries", auth.RequireAPILogin(h.APIEntries))
		r.Get("/quote", auth.RequireAPILogin(h.APIQuote))
	})
}

package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"live-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// Services groups the use cases exposed over HTTP and websockets.
type Services struct {
	Rooms     *app.RoomService
	Players   *app.PlayerService
	Questions *app.QuestionService
	Ledger    *app.AnswerLedger
	Views     *app.ViewService
}

// Options configures the router.
type Options struct {
	AdminToken     string
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *Metrics
}

// API serves the REST routes and the websocket endpoint.
type API struct {
	svc        Services
	adminToken string
	logger     *slog.Logger
	metrics    *Metrics
	validate   *validator.Validate
	ws         *WSHandler
}

func NewAPI(svc Services, opts Options) *API {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	api := &API{
		svc:        svc,
		adminToken: opts.AdminToken,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		validate:   validator.New(),
	}
	api.ws = NewWSHandler(svc, opts.Logger, opts.Metrics, api.isAdmin, opts.AllowedOrigins)
	return api
}

// Routes builds the chi router.
func (a *API) Routes(allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(corsHandler(allowedOrigins))
	mux.Use(a.metrics.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Get("/ws", a.ws.ServeWS)

	mux.Route("/api", func(r chi.Router) {
		r.Route("/questions", func(r chi.Router) {
			r.Get("/", a.listQuestions)
			r.With(a.requireAdmin).Post("/", a.createQuestion)
			r.With(a.requireAdmin).Put("/{questionID}", a.updateQuestion)
			r.With(a.requireAdmin).Delete("/{questionID}", a.deleteQuestion)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", a.ensureRoom)
			r.Get("/{roomID}", a.getRoom)

			r.Group(func(r chi.Router) {
				r.Use(a.requireAdmin)
				r.Post("/{roomID}/start", a.startQuestion)
				r.Post("/{roomID}/reveal", a.revealAnswer)
				r.Post("/{roomID}/next", a.nextQuestion)
				r.Post("/{roomID}/reveal-rank", a.revealRank)
				r.Post("/{roomID}/reset", a.resetRoom)
			})

			r.Get("/{roomID}/players", a.listPlayers)
			r.Post("/{roomID}/players", a.joinRoom)
			r.Post("/{roomID}/session", a.restoreSession)
			r.Get("/{roomID}/me", a.playerView)
			r.Put("/{roomID}/answers", a.submitAnswer)
			r.Get("/{roomID}/answers/count", a.answerCount)
			r.Get("/{roomID}/standings", a.standings)
		})
	})
	return mux
}

func corsHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", playerTokenHeader},
		MaxAge:         300,
	})
}

const playerTokenHeader = "X-Player-Token"

// requireAdmin checks the bearer token when one is configured.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.isAdmin(bearerToken(r)) {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "admin token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) isAdmin(token string) bool {
	if a.adminToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) == 1
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

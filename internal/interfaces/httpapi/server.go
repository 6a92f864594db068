package httpapi

import (
	"net/http"

	"github.com/mba-league/mbabot/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	apiKey string,
	ready func() bool,
	logger *logging.Logger,
	corsAllowedOrigins []string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)

	api := http.NewServeMux()
	registerCommandRoutes(api, handler)
	registerQueryRoutes(api, handler)
	mux.Handle("/api/", RequireAPIKey(apiKey, RequireReady(ready, api)))

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, RequestTimeout(recoverPanic(logger, mux)))))
}

func registerCommandRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/sign", handler.Sign)
	mux.HandleFunc("POST /api/release", handler.Release)
	mux.HandleFunc("POST /api/demand", handler.Demand)
	mux.HandleFunc("POST /api/offer", handler.Offer)
	mux.HandleFunc("POST /api/trade", handler.Trade)
	mux.HandleFunc("POST /api/resolve", handler.Resolve)
	mux.HandleFunc("POST /api/promote", handler.Promote)
	mux.HandleFunc("POST /api/demote", handler.Demote)
}

func registerQueryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/teams", handler.ListTeams)
	mux.HandleFunc("GET /api/roster", handler.TeamRoster)
	mux.HandleFunc("GET /api/leaderboard", handler.Leaderboard)
	mux.HandleFunc("GET /api/player-stats", handler.PlayerStats)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Package router assembles the HTTP surface: the student API, health,
// metrics and the embedded browser client.
package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aanand-mishra/coffee-tracker/internal/config"
	"github.com/aanand-mishra/coffee-tracker/internal/http/handlers/student"
	"github.com/aanand-mishra/coffee-tracker/internal/http/middleware"
	"github.com/aanand-mishra/coffee-tracker/internal/metrics"
	"github.com/aanand-mishra/coffee-tracker/internal/storage"
	"github.com/aanand-mishra/coffee-tracker/internal/utils/response"
	"github.com/aanand-mishra/coffee-tracker/web"
)

const healthTimeout = 2 * time.Second

// New registers every route and wraps the mux in the shared middleware.
//
// Route table:
//
//	GET    /api/students              → roster ordered by name
//	POST   /api/students              → add a student
//	GET    /api/students/{id}         → one student
//	POST   /api/students/{id}/coffee  → +1 coffee
//	DELETE /api/students/{id}         → remove a student
//	GET    /api/leaderboard           → top three coffee drinkers
//	GET    /health                    → liveness + database ping
//	GET    /metrics                   → Prometheus exposition
//	GET    /                          → browser client
func New(st storage.Storage, log *zap.Logger, m *metrics.Metrics, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.Metrics(m, pattern, h))
	}

	handle("GET /api/students", student.GetList(st, log))
	handle("POST /api/students", student.New(st, log, m))
	handle("GET /api/students/{id}", student.GetByID(st, log))
	handle("POST /api/students/{id}/coffee", student.AddCoffee(st, log, m))
	handle("DELETE /api/students/{id}", student.Delete(st, log, m))
	handle("GET /api/leaderboard", student.GetLeaderboard(st, log))
	handle("GET /health", health(st, log))

	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /", http.FileServerFS(web.Static()))

	var h http.Handler = mux
	h = middleware.CORS(cfg.CORS.AllowedOrigins)(h)
	h = middleware.Recover(log)(h)
	h = middleware.Logging(log)(h)
	h = middleware.RequestID(h)
	return h
}

func health(st storage.Storage, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}

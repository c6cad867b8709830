package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/clinic-stock/internal/infra/metrics"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

type Deps struct {
	Log       *slog.Logger
	Tokens    Tokens
	Users     UserStore
	Materials MaterialStore
	Inventory InventoryStore
	Requests  RequestStore
	Dashboard DashboardStore
	Metrics   *metrics.Metrics
	// ExposeMetrics mounts /metrics.
	ExposeMetrics bool
	Now           func() time.Time
}

type Server struct {
	srv *http.Server
	d   Deps
}

func New(addr string, d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Server{d: d}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.d.ExposeMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	mux.HandleFunc("POST /token", s.login)

	mux.Handle("GET /users/me/{$}", s.authed(s.me))
	mux.Handle("GET /users/me/activity", s.authed(s.myActivity))
	mux.Handle("GET /users/{$}", s.guard(vocab.ActionViewUsers, s.listUsers))
	mux.Handle("POST /users/{$}", s.guard(vocab.ActionManageUsers, s.createUser))
	mux.Handle("GET /users/{id}", s.guard(vocab.ActionViewUsers, s.getUser))
	mux.Handle("GET /users/{id}/activity", s.guard(vocab.ActionViewUsers, s.userActivity))

	mux.Handle("GET /materials/{$}", s.guard(vocab.ActionViewMaterials, s.listMaterials))
	mux.Handle("POST /materials/{$}", s.guard(vocab.ActionEditMaterials, s.createMaterial))
	mux.Handle("GET /materials/{id}", s.guard(vocab.ActionViewMaterials, s.getMaterial))
	mux.Handle("PUT /materials/{id}", s.guard(vocab.ActionEditMaterials, s.updateMaterial))
	mux.Handle("DELETE /materials/{id}", s.guard(vocab.ActionEditMaterials, s.deleteMaterial))
	mux.Handle("GET /materials/{id}/batches", s.guard(vocab.ActionViewMaterials, s.materialBatches))

	mux.Handle("POST /transactions/{$}", s.guard(vocab.ActionDispense, s.createTransaction))
	mux.Handle("GET /narcotic-logs/{$}", s.guard(vocab.ActionViewNarcoticJournal, s.narcoticLogs))

	mux.Handle("GET /requests/{$}", s.guard(vocab.ActionViewRequests, s.listRequests))
	mux.Handle("POST /requests/{$}", s.guard(vocab.ActionCreateRequest, s.createRequest))
	mux.Handle("POST /requests/{id}/approve", s.guard(vocab.ActionApproveRequest, s.approveRequest))

	mux.Handle("GET /dashboard/stats", s.guard(vocab.ActionViewDashboard, s.dashboardStats))

	return s.logRequests(mux)
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

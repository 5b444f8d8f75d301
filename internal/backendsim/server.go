// Package backendsim is an in-process stand-in for the PHP backend. It speaks
// the same contract (script paths, envelope, snake_case rows, backend status and
// role vocabulary, ?id= for single records) over a mock store, so the live
// client can be exercised without the real server.
package backendsim

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xelth-com/mfgtrack/internal/buildinfo"
	"github.com/xelth-com/mfgtrack/internal/logging"
	"github.com/xelth-com/mfgtrack/internal/middleware"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/websocket"
	"go.uber.org/zap"
)

// Server wraps the mux router and the store it serves
type Server struct {
	*mux.Router
	store  *mockstore.Store
	hub    *websocket.Hub
	secret string
	logger *zap.Logger
}

// New builds the router. hub may be nil when alert push is not needed.
// Alerts added to the store are published to the hub.
func New(store *mockstore.Store, hub *websocket.Hub, secret string, logger *zap.Logger) *Server {
	s := &Server{
		Router: mux.NewRouter(),
		store:  store,
		hub:    hub,
		secret: secret,
		logger: logging.OrNop(logger),
	}
	if hub != nil {
		store.OnAlert(hub.Publish)
	}

	s.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondFailure(w, http.StatusNotFound, "Endpoint not found")
	})

	s.Use(s.ensureSeeded)

	s.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	// Auth scripts
	s.HandleFunc("/api/login.php", s.login).Methods(http.MethodPost)
	s.HandleFunc("/api/logout.php", s.logout).Methods(http.MethodPost)

	// Everything else needs a session
	api := s.PathPrefix("/api").Subrouter()
	api.Use(middleware.SessionMiddleware(secret))

	api.HandleFunc("/users.php", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users.php", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users.php", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users.php", s.deleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/joborders.php", s.getJobOrders).Methods(http.MethodGet)
	api.HandleFunc("/joborders.php", s.createJobOrder).Methods(http.MethodPost)
	api.HandleFunc("/joborders.php", s.updateJobOrder).Methods(http.MethodPut)
	api.HandleFunc("/joborders.php", s.deleteJobOrder).Methods(http.MethodDelete)

	api.HandleFunc("/tasks.php", s.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks.php", s.submitTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks.php", s.reviewTask).Methods(http.MethodPut)

	api.HandleFunc("/operations.php", s.listOperations).Methods(http.MethodGet)
	api.HandleFunc("/operations.php", s.createOperation).Methods(http.MethodPost)
	api.HandleFunc("/operations.php", s.updateOperation).Methods(http.MethodPut)
	api.HandleFunc("/operations.php", s.deleteOperation).Methods(http.MethodDelete)

	api.HandleFunc("/devices.php", s.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/production_logs.php", s.listProductionLogs).Methods(http.MethodGet)
	api.HandleFunc("/production_logs.php", s.createProductionLog).Methods(http.MethodPost)
	api.HandleFunc("/planning_metrics.php", s.planningMetrics).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin_alerts.php").Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("", s.listAlerts).Methods(http.MethodGet)
	admin.HandleFunc("", s.sendAlert).Methods(http.MethodPost)

	if hub != nil {
		ws := s.PathPrefix("/ws").Subrouter()
		ws.Use(middleware.SessionMiddleware(secret))
		ws.HandleFunc("/alerts", s.alertStream).Methods(http.MethodGet)
	}

	return s
}

// ensureSeeded fills an empty store before the first request is served
func (s *Server) ensureSeeded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.EnsureSeeded(); err != nil {
			s.logger.Error("Seeding simulated backend failed", zap.Error(err))
			respondFailure(w, http.StatusInternalServerError, "Database unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router behind the path normalisation the PHP host applies
func (s *Server) Handler() http.Handler {
	return middleware.CaseInsensitiveMiddleware(s.Router)
}

// healthCheck returns the health status of the simulator
func (s *Server) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"server": "simulated",
		"build":  buildinfo.Get(),
		"counts": s.store.Counts(),
	})
}

func (s *Server) alertStream(w http.ResponseWriter, req *http.Request) {
	user := middleware.UserFromContext(req.Context())
	websocket.ServeWs(s.hub, user.Role, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondData wraps data in the success envelope
func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// respondPage wraps a list and its paging metadata
func respondPage(w http.ResponseWriter, rows []map[string]any, p pageInfo) {
	body := map[string]any{"success": true, "data": rows}
	if p.limit > 0 {
		body["pagination"] = map[string]int{"total": p.total, "page": p.page, "limit": p.limit}
	}
	respondJSON(w, http.StatusOK, body)
}

// respondFailure sends the failure envelope with an HTTP error status
func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "message": message})
}

// respondRejected is the PHP habit of answering 200 with success false
func respondRejected(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]any{"success": false, "message": message})
}

// pageInfo describes the page cut out of a list
type pageInfo struct {
	total, page, limit int
}

// pageOf applies ?page= and ?limit= to n items and returns the slice bounds
func pageOf(req *http.Request, n int) (start, end int, p pageInfo) {
	q := req.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return 0, n, pageInfo{total: n, page: 1}
	}
	pages := n / limit
	if n%limit != 0 {
		pages++
	}
	if page > pages {
		return n, n, pageInfo{total: n, page: page, limit: limit}
	}
	start = (page - 1) * limit
	end = n
	if limit < n-start {
		end = start + limit
	}
	return start, end, pageInfo{total: n, page: page, limit: limit}
}

func decodeBody(req *http.Request) (models.Row, error) {
	var row models.Row
	if err := json.NewDecoder(req.Body).Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

package backendsim

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/xelth-com/mfgtrack/internal/mapping"
	"github.com/xelth-com/mfgtrack/internal/middleware"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/utils"
	"go.uber.org/zap"
)

// ---- auth ----

func (s *Server) login(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, ok := s.store.Authenticate(body.String("username"), body.String("password"))
	if !ok {
		respondFailure(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := utils.GenerateSessionToken(&user, s.secret, utils.SessionTTL)
	if err != nil {
		s.logger.Error("Failed to sign session", zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(utils.SessionTTL),
	})

	s.logger.Info("User logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	respondData(w, map[string]any{"user": userRow(user)})
}

func (s *Server) logout(w http.ResponseWriter, req *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", MaxAge: -1})
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

// ---- users ----

func (s *Server) listUsers(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	search := q.Get("search")
	users := keep(s.store.Users(), func(u models.User) bool {
		return matches(search, u.Name, u.Username, u.Email)
	})
	start, end, p := pageOf(req, len(users))
	respondPage(w, rows(users[start:end], userRow), p)
}

func userInput(body models.Row) models.UserInput {
	username := body.String("username")
	in := models.UserInput{
		Name:     body.String("name"),
		Username: username,
		Email:    body.String("email"),
		Password: body.String("password"),
		Avatar:   body.String("avatar"),
	}
	if raw := body.String("role"); raw != "" {
		in.Role = mapping.MapRole(raw, username)
	}
	return in
}

func (s *Server) createUser(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in := userInput(body)
	if in.Username == "" {
		respondRejected(w, "username is required")
		return
	}
	u, err := s.store.CreateUser(in)
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	respondData(w, userRow(u))
}

func (s *Server) updateUser(w http.ResponseWriter, req *http.Request) {
	id, ok := requireID(w, req)
	if !ok {
		return
	}
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	u, err := s.store.UpdateUser(id, userInput(body))
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	respondData(w, userRow(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, req *http.Request) {
	s.deleteByID(w, req, s.store.DeleteUser)
}

// ---- job orders ----

func (s *Server) getJobOrders(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	if id := q.Get("id"); id != "" {
		jo, ok := s.store.JobOrder(id)
		if !ok {
			respondRejected(w, "Job order not found")
			return
		}
		respondData(w, jobOrderRow(jo))
		return
	}

	status := q.Get("status")
	search := q.Get("search")
	technician := q.Get("technician_id")
	orders := keep(s.store.JobOrders(), func(jo models.JobOrder) bool {
		if status != "" && jo.Status != mapping.MapJobOrderStatus(status) {
			return false
		}
		if technician != "" && !contains(jo.AssignedTo, technician) {
			return false
		}
		return matches(search, jo.Title, jo.Description)
	})
	start, end, p := pageOf(req, len(orders))
	respondPage(w, rows(orders[start:end], jobOrderRow), p)
}

func jobOrderInput(body models.Row) models.JobOrderInput {
	jo := mapping.MapJobOrder(body)
	in := models.JobOrderInput{
		Title:        jo.Title,
		Description:  jo.Description,
		TotalDevices: jo.TotalDevices,
		DueDate:      jo.DueDate,
		AssignedTo:   jo.AssignedTo,
	}
	if body.String("status") != "" {
		in.Status = jo.Status
	}
	return in
}

func (s *Server) createJobOrder(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in := jobOrderInput(body)
	if strings.TrimSpace(in.Title) == "" {
		respondRejected(w, "title is required")
		return
	}
	respondData(w, jobOrderRow(s.store.CreateJobOrder(in)))
}

func (s *Server) updateJobOrder(w http.ResponseWriter, req *http.Request) {
	id, ok := requireID(w, req)
	if !ok {
		return
	}
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	jo, err := s.store.UpdateJobOrder(id, jobOrderInput(body))
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	respondData(w, jobOrderRow(jo))
}

func (s *Server) deleteJobOrder(w http.ResponseWriter, req *http.Request) {
	s.deleteByID(w, req, s.store.DeleteJobOrder)
}

// ---- tasks ----

func (s *Server) listTasks(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	status := q.Get("status")
	jobOrder := q.Get("job_order_id")
	technician := q.Get("technician_id")
	tasks := keep(s.store.Tasks(), func(t models.TaskEntry) bool {
		if status != "" && t.Status != mapping.MapTaskStatus(status) {
			return false
		}
		if jobOrder != "" && t.JobOrderID != jobOrder {
			return false
		}
		return technician == "" || t.TechnicianID == technician
	})
	start, end, p := pageOf(req, len(tasks))
	respondPage(w, rows(tasks[start:end], taskRow), p)
}

func (s *Server) submitTask(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	t := mapping.MapTaskEntry(body)
	if t.JobOrderID == "" || t.TechnicianID == "" {
		respondRejected(w, "job_order_id and technician_id are required")
		return
	}
	created := s.store.AddTask(models.TaskSubmission{
		JobOrderID:    t.JobOrderID,
		OperationID:   t.OperationID,
		TechnicianID:  t.TechnicianID,
		SerialNumbers: t.SerialNumbers,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		StandardTime:  t.StandardTime,
		ActualTime:    t.ActualTime,
		Notes:         t.Notes,
	})
	respondData(w, taskRow(created))
}

func (s *Server) reviewTask(w http.ResponseWriter, req *http.Request) {
	id, ok := requireID(w, req)
	if !ok {
		return
	}
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	status := mapping.MapTaskStatus(body.String("status"))
	if status != models.TaskApproved && status != models.TaskRejected {
		respondRejected(w, "status must be approved or rejected")
		return
	}
	t, err := s.store.SetTaskStatus(id, status, body.String("rejection_reason"))
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	respondData(w, taskRow(t))
}

// ---- operations ----

func (s *Server) listOperations(w http.ResponseWriter, req *http.Request) {
	respondData(w, rows(s.store.Operations(), operationRow))
}

func operationInput(body models.Row) models.OperationInput {
	op := mapping.MapOperation(body)
	return models.OperationInput{
		Name:         op.Name,
		Description:  op.Description,
		Stage:        op.Stage,
		StandardTime: op.StandardTime,
	}
}

func (s *Server) createOperation(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	in := operationInput(body)
	if in.Name == "" {
		respondRejected(w, "name is required")
		return
	}
	respondData(w, operationRow(s.store.CreateOperation(in)))
}

func (s *Server) updateOperation(w http.ResponseWriter, req *http.Request) {
	id, ok := requireID(w, req)
	if !ok {
		return
	}
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	op, err := s.store.UpdateOperation(id, operationInput(body))
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	respondData(w, operationRow(op))
}

func (s *Server) deleteOperation(w http.ResponseWriter, req *http.Request) {
	s.deleteByID(w, req, s.store.DeleteOperation)
}

// ---- devices and production logs ----

func (s *Server) listDevices(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	jobOrder := q.Get("job_order_id")
	stage := q.Get("status")
	search := q.Get("search")
	devices := keep(s.store.Devices(), func(d models.Device) bool {
		if jobOrder != "" && d.JobOrderID != jobOrder {
			return false
		}
		if stage != "" && string(d.Stage) != stage {
			return false
		}
		return matches(search, d.SerialNumber)
	})
	start, end, p := pageOf(req, len(devices))
	respondPage(w, rows(devices[start:end], deviceRow), p)
}

func (s *Server) listProductionLogs(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	device := q.Get("device_id")
	jobOrder := q.Get("job_order_id")
	worker := q.Get("technician_id")
	logs := keep(s.store.ProductionLogs(), func(l models.ProductionWorkLog) bool {
		if device != "" && l.DeviceID != device {
			return false
		}
		if jobOrder != "" && l.JobOrderID != jobOrder {
			return false
		}
		return worker == "" || l.WorkerID == worker
	})
	start, end, p := pageOf(req, len(logs))
	respondPage(w, rows(logs[start:end], productionLogRow), p)
}

func (s *Server) createProductionLog(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	l := mapping.MapProductionWorkLog(body)
	if l.DeviceID == "" {
		respondRejected(w, "device_id is required")
		return
	}
	respondData(w, productionLogRow(s.store.AddProductionLog(l)))
}

// ---- dashboards and alerts ----

func (s *Server) planningMetrics(w http.ResponseWriter, req *http.Request) {
	respondData(w, metricsRow(s.store.PlanningMetrics()))
}

func (s *Server) listAlerts(w http.ResponseWriter, req *http.Request) {
	respondData(w, rows(s.store.Alerts(), alertRow))
}

func (s *Server) sendAlert(w http.ResponseWriter, req *http.Request) {
	body, err := decodeBody(req)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	a := mapping.MapAlert(body)
	if a.Title == "" {
		respondRejected(w, "title is required")
		return
	}
	sent := s.store.AddAlert(a)
	s.logger.Info("Alert sent",
		zap.String("title", sent.Title),
		zap.String("target", string(sent.TargetRole)),
		zap.String("by", middleware.UserFromContext(req.Context()).Username))
	respondData(w, alertRow(sent))
}

// ---- helpers ----

func requireID(w http.ResponseWriter, req *http.Request) (string, bool) {
	id := req.URL.Query().Get("id")
	if id == "" {
		respondRejected(w, "id is required")
		return "", false
	}
	return id, true
}

func (s *Server) deleteByID(w http.ResponseWriter, req *http.Request, del func(string) bool) {
	id, ok := requireID(w, req)
	if !ok {
		return
	}
	if !del(id) {
		respondRejected(w, "Record not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Deleted"})
}

// storeFailure maps store errors to the answers the PHP scripts give
func (s *Server) storeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mockstore.ErrDuplicateUsername):
		respondRejected(w, err.Error())
	case errors.Is(err, mockstore.ErrNotFound):
		respondRejected(w, "Record not found")
	default:
		s.logger.Error("Simulated backend write failed", zap.Error(err))
		respondFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}

func keep[T any](items []T, ok func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if ok(it) {
			out = append(out, it)
		}
	}
	return out
}

// matches is the LIKE '%search%' of the PHP scripts
func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

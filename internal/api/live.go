package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xelth-com/mfgtrack/internal/logging"
	"github.com/xelth-com/mfgtrack/internal/mapping"
	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

// Backend endpoint paths
const (
	EndpointLogin           = "/api/login.php"
	EndpointLogout          = "/api/logout.php"
	EndpointUsers           = "/api/users.php"
	EndpointJobOrders       = "/api/joborders.php"
	EndpointTasks           = "/api/tasks.php"
	EndpointOperations      = "/api/operations.php"
	EndpointDevices         = "/api/devices.php"
	EndpointProductionLogs  = "/api/production_logs.php"
	EndpointPlanningMetrics = "/api/planning_metrics.php"
	EndpointAdminAlerts     = "/api/admin_alerts.php"
)

// LiveClient talks to the PHP backend
type LiveClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewLiveClient creates a backend client. httpClient should carry a cookie jar.
func NewLiveClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *LiveClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &LiveClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logging.OrNop(logger),
	}
}

func idQuery(id string) url.Values {
	return url.Values{"id": {id}}
}

// ---- auth ----

func (c *LiveClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointLogin, nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		var appErr *ApplicationError
		if errors.As(err, &appErr) || StatusCode(err) == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, err
	}
	row, err := decodeRow(res.Payload, "user")
	if err != nil {
		return nil, err
	}
	if !hasRecord(row) {
		err := &ApplicationError{Endpoint: EndpointLogin, Message: "login response carried no user"}
		c.logger.Error("API request failed", zap.String("endpoint", EndpointLogin), zap.Error(err))
		return nil, err
	}
	u := mapping.MapUser(row)
	return &u, nil
}

func (c *LiveClient) Logout(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodPost, EndpointLogout, nil, nil)
	return err
}

// ---- users ----

func (c *LiveClient) ListUsers(ctx context.Context, opts ListOptions) (models.Page[models.User], error) {
	return listLive(ctx, c, EndpointUsers, opts.values(nil), opts, mapping.MapUser, "users")
}

func (c *LiveClient) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointUsers, nil, mapping.UserPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "user", mapping.MapUser, func() models.User {
		return models.User{Name: in.Name, Username: in.Username, Email: in.Email, Role: in.Role, Avatar: in.Avatar}
	})
}

func (c *LiveClient) UpdateUser(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	res, err := c.request(ctx, http.MethodPut, EndpointUsers, idQuery(id), mapping.UserPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "user", mapping.MapUser, func() models.User {
		return models.User{ID: id, Name: in.Name, Username: in.Username, Email: in.Email, Role: in.Role, Avatar: in.Avatar}
	})
}

func (c *LiveClient) DeleteUser(ctx context.Context, id string) (bool, error) {
	return c.delete(ctx, EndpointUsers, id)
}

// ---- job orders ----

func (c *LiveClient) ListJobOrders(ctx context.Context, opts ListOptions) (models.Page[models.JobOrder], error) {
	q := opts.values(func(s string) string {
		return mapping.JobOrderStatusToBackend(models.JobOrderStatus(s))
	})
	return listLive(ctx, c, EndpointJobOrders, q, opts, mapping.MapJobOrder, "job_orders", "joborders")
}

func (c *LiveClient) GetJobOrder(ctx context.Context, id string) (*models.JobOrder, error) {
	res, err := c.request(ctx, http.MethodGet, EndpointJobOrders, idQuery(id), nil)
	if err != nil {
		return nil, err
	}
	// some backends answer a single-item list for ?id=
	if rows, err := decodeRows(res.Payload, "job_orders"); err == nil && len(rows) > 0 {
		jo := mapping.MapJobOrder(rows[0])
		return &jo, nil
	}
	row, err := decodeRow(res.Payload, "job_order")
	if err != nil {
		return nil, err
	}
	if !hasRecord(row) {
		return nil, &ApplicationError{Endpoint: EndpointJobOrders, Message: fmt.Sprintf("job order %s not found", id)}
	}
	jo := mapping.MapJobOrder(row)
	return &jo, nil
}

func (c *LiveClient) CreateJobOrder(ctx context.Context, in models.JobOrderInput) (*models.JobOrder, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointJobOrders, nil, mapping.JobOrderPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "job_order", mapping.MapJobOrder, func() models.JobOrder {
		return jobOrderFromInput("", in)
	})
}

func (c *LiveClient) UpdateJobOrder(ctx context.Context, id string, in models.JobOrderInput) (*models.JobOrder, error) {
	res, err := c.request(ctx, http.MethodPut, EndpointJobOrders, idQuery(id), mapping.JobOrderPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "job_order", mapping.MapJobOrder, func() models.JobOrder {
		return jobOrderFromInput(id, in)
	})
}

func (c *LiveClient) DeleteJobOrder(ctx context.Context, id string) (bool, error) {
	return c.delete(ctx, EndpointJobOrders, id)
}

func jobOrderFromInput(id string, in models.JobOrderInput) models.JobOrder {
	status := in.Status
	if status == "" {
		status = models.JobOrderOpen
	}
	assigned := in.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	return models.JobOrder{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		Status:       status,
		TotalDevices: in.TotalDevices,
		DueDate:      in.DueDate,
		AssignedTo:   assigned,
	}
}

// ---- tasks ----

func (c *LiveClient) ListTasks(ctx context.Context, opts ListOptions) (models.Page[models.TaskEntry], error) {
	q := opts.values(func(s string) string {
		return mapping.TaskStatusToBackend(models.TaskStatus(s))
	})
	return listLive(ctx, c, EndpointTasks, q, opts, mapping.MapTaskEntry, "tasks")
}

func (c *LiveClient) SubmitTaskCompletion(ctx context.Context, sub models.TaskSubmission) (*models.TaskEntry, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointTasks, nil, mapping.TaskSubmissionPayload(sub))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "task", mapping.MapTaskEntry, func() models.TaskEntry {
		serials := sub.SerialNumbers
		if serials == nil {
			serials = []string{}
		}
		return models.TaskEntry{
			JobOrderID:    sub.JobOrderID,
			OperationID:   sub.OperationID,
			TechnicianID:  sub.TechnicianID,
			SerialNumbers: serials,
			StartTime:     sub.StartTime,
			EndTime:       sub.EndTime,
			StandardTime:  sub.StandardTime,
			ActualTime:    sub.ActualTime,
			Notes:         sub.Notes,
			Status:        models.TaskSubmitted,
		}
	})
}

func (c *LiveClient) ApproveTask(ctx context.Context, id string) (bool, error) {
	_, err := c.request(ctx, http.MethodPut, EndpointTasks, idQuery(id), mapping.TaskReviewPayload(models.TaskApproved, ""))
	return err == nil, err
}

func (c *LiveClient) RejectTask(ctx context.Context, id, reason string) (bool, error) {
	_, err := c.request(ctx, http.MethodPut, EndpointTasks, idQuery(id), mapping.TaskReviewPayload(models.TaskRejected, reason))
	return err == nil, err
}

// ---- operations ----

func (c *LiveClient) ListOperations(ctx context.Context) ([]models.Operation, error) {
	page, err := listLive(ctx, c, EndpointOperations, nil, ListOptions{}, mapping.MapOperation, "operations")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *LiveClient) CreateOperation(ctx context.Context, in models.OperationInput) (*models.Operation, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointOperations, nil, mapping.OperationPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "operation", mapping.MapOperation, func() models.Operation {
		return mapping.MapOperation(models.Row(mapping.OperationPayload(in)))
	})
}

func (c *LiveClient) UpdateOperation(ctx context.Context, id string, in models.OperationInput) (*models.Operation, error) {
	res, err := c.request(ctx, http.MethodPut, EndpointOperations, idQuery(id), mapping.OperationPayload(in))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "operation", mapping.MapOperation, func() models.Operation {
		op := mapping.MapOperation(models.Row(mapping.OperationPayload(in)))
		op.ID = id
		return op
	})
}

func (c *LiveClient) DeleteOperation(ctx context.Context, id string) (bool, error) {
	return c.delete(ctx, EndpointOperations, id)
}

// ---- devices and history ----

func (c *LiveClient) ListDevices(ctx context.Context, opts ListOptions) (models.Page[models.Device], error) {
	return listLive(ctx, c, EndpointDevices, opts.values(nil), opts, mapping.MapDevice, "devices")
}

func (c *LiveClient) ListProductionLogs(ctx context.Context, opts ListOptions) (models.Page[models.ProductionWorkLog], error) {
	return listLive(ctx, c, EndpointProductionLogs, opts.values(nil), opts, mapping.MapProductionWorkLog, "logs", "production_logs")
}

func (c *LiveClient) CreateProductionLog(ctx context.Context, l models.ProductionWorkLog) (*models.ProductionWorkLog, error) {
	res, err := c.request(ctx, http.MethodPost, EndpointProductionLogs, nil, mapping.ProductionLogPayload(l))
	if err != nil {
		return nil, err
	}
	return mutatedLive(res, "log", mapping.MapProductionWorkLog, func() models.ProductionWorkLog { return l })
}

// ListTestLogs degrades to an empty page: the backend has no endpoint yet
func (c *LiveClient) ListTestLogs(ctx context.Context, opts ListOptions) (models.Page[models.TestLog], error) {
	c.logger.Warn("Test logs endpoint not implemented on backend, returning empty list")
	return paginate([]models.TestLog{}, opts), nil
}

func (c *LiveClient) CreateTestLog(ctx context.Context, l models.TestLog) (*models.TestLog, error) {
	err := &NotImplementedError{Operation: "creating test logs"}
	c.logger.Error("API request failed", zap.String("endpoint", "test_logs"), zap.Error(err))
	return nil, err
}

// ListQualityInspections degrades to an empty page: the backend has no endpoint yet
func (c *LiveClient) ListQualityInspections(ctx context.Context, opts ListOptions) (models.Page[models.QualityInspection], error) {
	c.logger.Warn("Quality inspections endpoint not implemented on backend, returning empty list")
	return paginate([]models.QualityInspection{}, opts), nil
}

func (c *LiveClient) CreateQualityInspection(ctx context.Context, q models.QualityInspection) (*models.QualityInspection, error) {
	err := &NotImplementedError{Operation: "creating quality inspections"}
	c.logger.Error("API request failed", zap.String("endpoint", "quality_inspections"), zap.Error(err))
	return nil, err
}

// ---- dashboards and alerts ----

func (c *LiveClient) GetPlanningMetrics(ctx context.Context) (*models.PlanningMetrics, error) {
	res, err := c.request(ctx, http.MethodGet, EndpointPlanningMetrics, nil, nil)
	if err != nil {
		return nil, err
	}
	row, err := decodeRow(res.Payload, "metrics")
	if err != nil {
		return nil, err
	}
	m := mapping.MapPlanningMetrics(row)
	return &m, nil
}

func (c *LiveClient) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	page, err := listLive(ctx, c, EndpointAdminAlerts, nil, ListOptions{}, mapping.MapAlert, "alerts")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *LiveClient) SendAlert(ctx context.Context, a models.Alert) (bool, error) {
	_, err := c.request(ctx, http.MethodPost, EndpointAdminAlerts, nil, mapping.AlertPayload(a))
	return err == nil, err
}

// ---- helpers ----

func (c *LiveClient) delete(ctx context.Context, endpoint, id string) (bool, error) {
	if _, err := c.request(ctx, http.MethodDelete, endpoint, idQuery(id), nil); err != nil {
		return false, err
	}
	return true, nil
}

// listLive fetches and maps one list endpoint
func listLive[T any](ctx context.Context, c *LiveClient, endpoint string, q url.Values, opts ListOptions, mapFn func(models.Row) T, keys ...string) (models.Page[T], error) {
	res, err := c.request(ctx, http.MethodGet, endpoint, q, nil)
	if err != nil {
		return models.Page[T]{}, err
	}
	rows, err := decodeRows(res.Payload, keys...)
	if err != nil {
		c.logger.Error("API request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return models.Page[T]{}, err
	}
	return pageFromRows(mapping.MapRows(rows, mapFn), res.Pagination, opts), nil
}

// mutatedLive maps the record a mutation returned, or falls back to what was sent
func mutatedLive[T any](res *result, key string, mapFn func(models.Row) T, fallback func() T) (*T, error) {
	var row models.Row
	if err := json.Unmarshal(res.Payload, &row); err == nil {
		if inner, ok := row[key].(map[string]any); ok {
			row = inner
		}
		// a bare {"id": n} is an acknowledgement, not the stored record
		if hasRecord(row) && len(row) > 1 {
			v := mapFn(row)
			return &v, nil
		}
		if id := row.String("id", "insert_id", "insertId"); id != "" {
			v := fallback()
			setID(&v, id)
			return &v, nil
		}
	}
	v := fallback()
	return &v, nil
}

// setID fills the id of a fallback entity when the backend only returned one
func setID(v any, id string) {
	switch e := v.(type) {
	case *models.User:
		if e.ID == "" {
			e.ID = id
		}
	case *models.JobOrder:
		if e.ID == "" {
			e.ID = id
		}
	case *models.TaskEntry:
		if e.ID == "" {
			e.ID = id
		}
	case *models.Operation:
		if e.ID == "" {
			e.ID = id
		}
	case *models.ProductionWorkLog:
		if e.ID == "" {
			e.ID = id
		}
	}
}

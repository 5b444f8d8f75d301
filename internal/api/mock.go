package api

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/xelth-com/mfgtrack/internal/logging"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

// MockClient serves every call from an in-memory store. The store is seeded
// on first use.
type MockClient struct {
	store  *mockstore.Store
	logger *zap.Logger
}

// NewMockClient creates a client over store
func NewMockClient(store *mockstore.Store, logger *zap.Logger) *MockClient {
	return &MockClient{store: store, logger: logging.OrNop(logger)}
}

// Store exposes the backing store to the composition root
func (c *MockClient) Store() *mockstore.Store {
	return c.store
}

func (c *MockClient) ready(op string) error {
	if err := c.store.EnsureSeeded(); err != nil {
		c.logger.Error("Mock store seeding failed", zap.String("operation", op), zap.Error(err))
		return err
	}
	return nil
}

// fail logs and translates store errors into the client's error types
func (c *MockClient) fail(op string, err error) error {
	if errors.Is(err, mockstore.ErrDuplicateUsername) {
		err = &ApplicationError{Endpoint: op, Message: err.Error()}
	}
	c.logger.Error("API request failed", zap.String("endpoint", op), zap.Error(err))
	return err
}

// ---- auth ----

func (c *MockClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	if err := c.ready("login"); err != nil {
		return nil, err
	}
	u, ok := c.store.Authenticate(username, password)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *MockClient) Logout(ctx context.Context) error {
	return nil
}

// ---- users ----

func (c *MockClient) ListUsers(ctx context.Context, opts ListOptions) (models.Page[models.User], error) {
	if err := c.ready("users"); err != nil {
		return models.Page[models.User]{}, err
	}
	users := filter(c.store.Users(), func(u models.User) bool {
		if opts.Status != "" && string(u.Role) != opts.Status {
			return false
		}
		return opts.Search == "" || containsFold(u.Name, opts.Search) || containsFold(u.Username, opts.Search)
	})
	return paginate(users, opts), nil
}

func (c *MockClient) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	if err := c.ready("users"); err != nil {
		return nil, err
	}
	u, err := c.store.CreateUser(in)
	if err != nil {
		return nil, c.fail("users", err)
	}
	return &u, nil
}

func (c *MockClient) UpdateUser(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	if err := c.ready("users"); err != nil {
		return nil, err
	}
	u, err := c.store.UpdateUser(id, in)
	if err != nil {
		return nil, c.fail("users", err)
	}
	return &u, nil
}

func (c *MockClient) DeleteUser(ctx context.Context, id string) (bool, error) {
	if err := c.ready("users"); err != nil {
		return false, err
	}
	return c.store.DeleteUser(id), nil
}

// ---- job orders ----

func (c *MockClient) ListJobOrders(ctx context.Context, opts ListOptions) (models.Page[models.JobOrder], error) {
	if err := c.ready("joborders"); err != nil {
		return models.Page[models.JobOrder]{}, err
	}
	orders := filter(c.store.JobOrders(), func(jo models.JobOrder) bool {
		if opts.Status != "" && string(jo.Status) != opts.Status {
			return false
		}
		if opts.TechnicianID != "" && !contains(jo.AssignedTo, opts.TechnicianID) {
			return false
		}
		return opts.Search == "" || containsFold(jo.Title, opts.Search)
	})
	// newest first, like the backend listing
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return paginate(orders, opts), nil
}

func (c *MockClient) GetJobOrder(ctx context.Context, id string) (*models.JobOrder, error) {
	if err := c.ready("joborders"); err != nil {
		return nil, err
	}
	jo, ok := c.store.JobOrder(id)
	if !ok {
		return nil, c.fail("joborders", ErrNotFound)
	}
	return &jo, nil
}

func (c *MockClient) CreateJobOrder(ctx context.Context, in models.JobOrderInput) (*models.JobOrder, error) {
	if err := c.ready("joborders"); err != nil {
		return nil, err
	}
	jo := c.store.CreateJobOrder(in)
	return &jo, nil
}

func (c *MockClient) UpdateJobOrder(ctx context.Context, id string, in models.JobOrderInput) (*models.JobOrder, error) {
	if err := c.ready("joborders"); err != nil {
		return nil, err
	}
	jo, err := c.store.UpdateJobOrder(id, in)
	if err != nil {
		return nil, c.fail("joborders", err)
	}
	return &jo, nil
}

func (c *MockClient) DeleteJobOrder(ctx context.Context, id string) (bool, error) {
	if err := c.ready("joborders"); err != nil {
		return false, err
	}
	return c.store.DeleteJobOrder(id), nil
}

// ---- tasks ----

func (c *MockClient) ListTasks(ctx context.Context, opts ListOptions) (models.Page[models.TaskEntry], error) {
	if err := c.ready("tasks"); err != nil {
		return models.Page[models.TaskEntry]{}, err
	}
	tasks := filter(c.store.Tasks(), func(t models.TaskEntry) bool {
		if opts.Status != "" && string(t.Status) != opts.Status {
			return false
		}
		if opts.JobOrderID != "" && t.JobOrderID != opts.JobOrderID {
			return false
		}
		if opts.TechnicianID != "" && t.TechnicianID != opts.TechnicianID {
			return false
		}
		if opts.Search != "" && !containsFold(t.Notes, opts.Search) && !containsFold(strings.Join(t.SerialNumbers, " "), opts.Search) {
			return false
		}
		return true
	})
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].StartTime.After(tasks[j].StartTime) })
	return paginate(tasks, opts), nil
}

func (c *MockClient) SubmitTaskCompletion(ctx context.Context, sub models.TaskSubmission) (*models.TaskEntry, error) {
	if err := c.ready("tasks"); err != nil {
		return nil, err
	}
	t := c.store.AddTask(sub)
	return &t, nil
}

func (c *MockClient) ApproveTask(ctx context.Context, id string) (bool, error) {
	return c.reviewTask(id, models.TaskApproved, "")
}

func (c *MockClient) RejectTask(ctx context.Context, id, reason string) (bool, error) {
	return c.reviewTask(id, models.TaskRejected, reason)
}

func (c *MockClient) reviewTask(id string, status models.TaskStatus, reason string) (bool, error) {
	if err := c.ready("tasks"); err != nil {
		return false, err
	}
	if _, err := c.store.SetTaskStatus(id, status, reason); err != nil {
		return false, c.fail("tasks", err)
	}
	return true, nil
}

// ---- operations ----

func (c *MockClient) ListOperations(ctx context.Context) ([]models.Operation, error) {
	if err := c.ready("operations"); err != nil {
		return nil, err
	}
	return c.store.Operations(), nil
}

func (c *MockClient) CreateOperation(ctx context.Context, in models.OperationInput) (*models.Operation, error) {
	if err := c.ready("operations"); err != nil {
		return nil, err
	}
	op := c.store.CreateOperation(in)
	return &op, nil
}

func (c *MockClient) UpdateOperation(ctx context.Context, id string, in models.OperationInput) (*models.Operation, error) {
	if err := c.ready("operations"); err != nil {
		return nil, err
	}
	op, err := c.store.UpdateOperation(id, in)
	if err != nil {
		return nil, c.fail("operations", err)
	}
	return &op, nil
}

func (c *MockClient) DeleteOperation(ctx context.Context, id string) (bool, error) {
	if err := c.ready("operations"); err != nil {
		return false, err
	}
	return c.store.DeleteOperation(id), nil
}

// ---- devices and history ----

func (c *MockClient) ListDevices(ctx context.Context, opts ListOptions) (models.Page[models.Device], error) {
	if err := c.ready("devices"); err != nil {
		return models.Page[models.Device]{}, err
	}
	devices := filter(c.store.Devices(), func(d models.Device) bool {
		if opts.Status != "" && string(d.Stage) != opts.Status {
			return false
		}
		if opts.JobOrderID != "" && d.JobOrderID != opts.JobOrderID {
			return false
		}
		return opts.Search == "" || containsFold(d.SerialNumber, opts.Search)
	})
	return paginate(devices, opts), nil
}

func (c *MockClient) ListProductionLogs(ctx context.Context, opts ListOptions) (models.Page[models.ProductionWorkLog], error) {
	if err := c.ready("production_logs"); err != nil {
		return models.Page[models.ProductionWorkLog]{}, err
	}
	logs := filter(c.store.ProductionLogs(), func(l models.ProductionWorkLog) bool {
		return matchDeviceHistory(opts, l.DeviceID, l.JobOrderID, l.WorkerID, string(l.Status))
	})
	return paginate(logs, opts), nil
}

func (c *MockClient) CreateProductionLog(ctx context.Context, l models.ProductionWorkLog) (*models.ProductionWorkLog, error) {
	if err := c.ready("production_logs"); err != nil {
		return nil, err
	}
	out := c.store.AddProductionLog(l)
	return &out, nil
}

func (c *MockClient) ListTestLogs(ctx context.Context, opts ListOptions) (models.Page[models.TestLog], error) {
	if err := c.ready("test_logs"); err != nil {
		return models.Page[models.TestLog]{}, err
	}
	jobOrders := c.deviceJobOrders(opts)
	logs := filter(c.store.TestLogs(), func(l models.TestLog) bool {
		return matchDeviceHistory(opts, l.DeviceID, jobOrders[l.DeviceID], l.TesterID, string(l.Result))
	})
	return paginate(logs, opts), nil
}

func (c *MockClient) CreateTestLog(ctx context.Context, l models.TestLog) (*models.TestLog, error) {
	if err := c.ready("test_logs"); err != nil {
		return nil, err
	}
	out := c.store.AddTestLog(l)
	return &out, nil
}

func (c *MockClient) ListQualityInspections(ctx context.Context, opts ListOptions) (models.Page[models.QualityInspection], error) {
	if err := c.ready("quality_inspections"); err != nil {
		return models.Page[models.QualityInspection]{}, err
	}
	jobOrders := c.deviceJobOrders(opts)
	items := filter(c.store.QualityInspections(), func(q models.QualityInspection) bool {
		return matchDeviceHistory(opts, q.DeviceID, jobOrders[q.DeviceID], q.InspectorID, string(q.Result))
	})
	return paginate(items, opts), nil
}

func (c *MockClient) CreateQualityInspection(ctx context.Context, q models.QualityInspection) (*models.QualityInspection, error) {
	if err := c.ready("quality_inspections"); err != nil {
		return nil, err
	}
	out := c.store.AddQualityInspection(q)
	return &out, nil
}

// ---- dashboards and alerts ----

func (c *MockClient) GetPlanningMetrics(ctx context.Context) (*models.PlanningMetrics, error) {
	if err := c.ready("planning_metrics"); err != nil {
		return nil, err
	}
	m := c.store.PlanningMetrics()
	return &m, nil
}

func (c *MockClient) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	return c.store.Alerts(), nil
}

func (c *MockClient) SendAlert(ctx context.Context, a models.Alert) (bool, error) {
	c.store.AddAlert(a)
	return true, nil
}

// deviceJobOrders maps device ids to their job order for collections that
// only record the device. Nil when no job order filter is set.
func (c *MockClient) deviceJobOrders(opts ListOptions) map[string]string {
	if opts.JobOrderID == "" {
		return nil
	}
	devices := c.store.Devices()
	out := make(map[string]string, len(devices))
	for _, d := range devices {
		out[d.ID] = d.JobOrderID
	}
	return out
}

// matchDeviceHistory applies the filters shared by the per-device history collections.
// The technician filter matches whoever recorded the entry.
func matchDeviceHistory(opts ListOptions, deviceID, jobOrderID, personID, status string) bool {
	if opts.DeviceID != "" && deviceID != opts.DeviceID {
		return false
	}
	if opts.JobOrderID != "" && jobOrderID != opts.JobOrderID {
		return false
	}
	if opts.TechnicianID != "" && personID != opts.TechnicianID {
		return false
	}
	return opts.Status == "" || status == opts.Status
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

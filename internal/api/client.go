// Package api is the data normalization client. It serves every entity read
// and mutation the dashboards need, either from the PHP backend (LiveClient)
// or from an in-memory store (MockClient), and always returns the fixed
// view-model types of internal/models.
package api

import (
	"context"

	"github.com/xelth-com/mfgtrack/internal/config"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

// Client is the single entry point used by dashboards and the CLI.
// Implementations are safe for concurrent use. Calls are never retried.
type Client interface {
	// Login returns nil and no error when the credentials are wrong
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error

	ListUsers(ctx context.Context, opts ListOptions) (models.Page[models.User], error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in models.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)

	ListJobOrders(ctx context.Context, opts ListOptions) (models.Page[models.JobOrder], error)
	GetJobOrder(ctx context.Context, id string) (*models.JobOrder, error)
	CreateJobOrder(ctx context.Context, in models.JobOrderInput) (*models.JobOrder, error)
	UpdateJobOrder(ctx context.Context, id string, in models.JobOrderInput) (*models.JobOrder, error)
	DeleteJobOrder(ctx context.Context, id string) (bool, error)

	ListTasks(ctx context.Context, opts ListOptions) (models.Page[models.TaskEntry], error)
	SubmitTaskCompletion(ctx context.Context, sub models.TaskSubmission) (*models.TaskEntry, error)
	ApproveTask(ctx context.Context, id string) (bool, error)
	RejectTask(ctx context.Context, id, reason string) (bool, error)

	ListOperations(ctx context.Context) ([]models.Operation, error)
	CreateOperation(ctx context.Context, in models.OperationInput) (*models.Operation, error)
	UpdateOperation(ctx context.Context, id string, in models.OperationInput) (*models.Operation, error)
	DeleteOperation(ctx context.Context, id string) (bool, error)

	ListDevices(ctx context.Context, opts ListOptions) (models.Page[models.Device], error)
	ListProductionLogs(ctx context.Context, opts ListOptions) (models.Page[models.ProductionWorkLog], error)
	CreateProductionLog(ctx context.Context, l models.ProductionWorkLog) (*models.ProductionWorkLog, error)
	ListTestLogs(ctx context.Context, opts ListOptions) (models.Page[models.TestLog], error)
	CreateTestLog(ctx context.Context, l models.TestLog) (*models.TestLog, error)
	ListQualityInspections(ctx context.Context, opts ListOptions) (models.Page[models.QualityInspection], error)
	CreateQualityInspection(ctx context.Context, q models.QualityInspection) (*models.QualityInspection, error)

	GetPlanningMetrics(ctx context.Context) (*models.PlanningMetrics, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	SendAlert(ctx context.Context, a models.Alert) (bool, error)
}

// New picks the implementation for the lifetime of the process.
// store is only used in mock mode and is seeded lazily.
func New(cfg config.APIConfig, store *mockstore.Store, logger *zap.Logger) Client {
	if cfg.UseMockData {
		if store == nil {
			store = mockstore.New(mockstore.WithLogger(logger))
		}
		return NewMockClient(store, logger)
	}
	return NewLiveClient(cfg.BaseURL, NewHTTPClient(cfg.Timeout), logger)
}

// Package dashboard loads everything one role's dashboard shows in a single
// concurrent round of client calls.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/xelth-com/mfgtrack/internal/api"
	"github.com/xelth-com/mfgtrack/internal/models"
	"golang.org/x/sync/errgroup"
)

// Section names used as keys of Snapshot.Errors
const (
	SectionMetrics        = "metrics"
	SectionUsers          = "users"
	SectionJobOrders      = "job_orders"
	SectionTasks          = "tasks"
	SectionOperations     = "operations"
	SectionDevices        = "devices"
	SectionProductionLogs = "production_logs"
	SectionTestLogs       = "test_logs"
	SectionInspections    = "quality_inspections"
	SectionAlerts         = "alerts"
)

// ErrNoUser is returned when Load is called without a logged-in user
var ErrNoUser = errors.New("dashboard requires a logged-in user")

// Snapshot is one dashboard's data. A section that failed is left empty and
// its error is kept in Errors.
type Snapshot struct {
	User           models.User
	Metrics        *models.PlanningMetrics
	Users          []models.User
	JobOrders      []models.JobOrder
	Tasks          []models.TaskEntry
	Operations     []models.Operation
	Devices        []models.Device
	ProductionLogs []models.ProductionWorkLog
	TestLogs       []models.TestLog
	Inspections    []models.QualityInspection
	Alerts         []models.Alert
	Errors         map[string]error
}

// Failed reports whether section could not be loaded
func (s *Snapshot) Failed(section string) bool {
	_, ok := s.Errors[section]
	return ok
}

// loader runs section fetches concurrently and records their failures
type loader struct {
	g    errgroup.Group
	mu   sync.Mutex
	errs map[string]error
}

func (l *loader) run(section string, fetch func() error) {
	l.g.Go(func() error {
		if err := fetch(); err != nil {
			l.mu.Lock()
			l.errs[section] = err
			l.mu.Unlock()
		}
		// never fail the group: siblings keep running
		return nil
	})
}

// Load fetches the sections user's role needs. It returns an error only when
// there is no user; section failures are reported in the snapshot.
func Load(ctx context.Context, client api.Client, user *models.User) (*Snapshot, error) {
	if user == nil {
		return nil, ErrNoUser
	}
	snap := &Snapshot{User: *user}
	l := &loader{errs: map[string]error{}}

	switch user.Role {
	case models.RoleAdmin:
		l.run(SectionMetrics, func() (err error) {
			snap.Metrics, err = client.GetPlanningMetrics(ctx)
			return err
		})
		l.run(SectionUsers, func() error {
			page, err := client.ListUsers(ctx, api.ListOptions{})
			snap.Users = page.Items
			return err
		})
		l.run(SectionJobOrders, func() error {
			page, err := client.ListJobOrders(ctx, api.ListOptions{})
			snap.JobOrders = page.Items
			return err
		})
		loadAlerts(ctx, l, client, snap)

	case models.RolePlanningEngineer:
		l.run(SectionMetrics, func() (err error) {
			snap.Metrics, err = client.GetPlanningMetrics(ctx)
			return err
		})
		l.run(SectionJobOrders, func() error {
			page, err := client.ListJobOrders(ctx, api.ListOptions{})
			snap.JobOrders = page.Items
			return err
		})
		l.run(SectionOperations, func() (err error) {
			snap.Operations, err = client.ListOperations(ctx)
			return err
		})
		l.run(SectionDevices, func() error {
			page, err := client.ListDevices(ctx, api.ListOptions{})
			snap.Devices = page.Items
			return err
		})

	case models.RoleSupervisor:
		l.run(SectionJobOrders, func() error {
			page, err := client.ListJobOrders(ctx, api.ListOptions{Status: string(models.JobOrderInProgress)})
			snap.JobOrders = page.Items
			return err
		})
		l.run(SectionTasks, func() error {
			page, err := client.ListTasks(ctx, api.ListOptions{Status: string(models.TaskSubmitted)})
			snap.Tasks = page.Items
			return err
		})
		l.run(SectionDevices, func() error {
			page, err := client.ListDevices(ctx, api.ListOptions{})
			snap.Devices = page.Items
			return err
		})
		loadAlerts(ctx, l, client, snap)

	default:
		loadTechnician(ctx, l, client, snap)
	}

	_ = l.g.Wait()
	snap.Errors = l.errs
	return snap, nil
}

func loadTechnician(ctx context.Context, l *loader, client api.Client, snap *Snapshot) {
	mine := api.ListOptions{TechnicianID: snap.User.ID}

	l.run(SectionJobOrders, func() error {
		page, err := client.ListJobOrders(ctx, mine)
		snap.JobOrders = page.Items
		return err
	})
	l.run(SectionTasks, func() error {
		page, err := client.ListTasks(ctx, mine)
		snap.Tasks = page.Items
		return err
	})
	l.run(SectionOperations, func() (err error) {
		snap.Operations, err = client.ListOperations(ctx)
		return err
	})

	switch snap.User.Role {
	case models.RoleTestPersonnel:
		l.run(SectionTestLogs, func() error {
			page, err := client.ListTestLogs(ctx, mine)
			snap.TestLogs = page.Items
			return err
		})
	case models.RoleQualityInspector:
		l.run(SectionInspections, func() error {
			page, err := client.ListQualityInspections(ctx, mine)
			snap.Inspections = page.Items
			return err
		})
	default:
		l.run(SectionProductionLogs, func() error {
			page, err := client.ListProductionLogs(ctx, mine)
			snap.ProductionLogs = page.Items
			return err
		})
	}
	loadAlerts(ctx, l, client, snap)
}

// loadAlerts keeps the alerts addressed to the user's role, or to everyone.
// Admins see all of them.
func loadAlerts(ctx context.Context, l *loader, client api.Client, snap *Snapshot) {
	l.run(SectionAlerts, func() error {
		alerts, err := client.ListAlerts(ctx)
		if err != nil {
			return err
		}
		role := snap.User.Role
		out := make([]models.Alert, 0, len(alerts))
		for _, a := range alerts {
			if role == models.RoleAdmin || a.TargetRole == "" || a.TargetRole == role {
				out = append(out, a)
			}
		}
		snap.Alerts = out
		return nil
	})
}

package mockstore

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/xelth-com/mfgtrack/internal/mapping"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/utils"
	"go.uber.org/zap"
)

var seedUsers = []struct {
	name, username string
	role           models.Role
}{
	{"System Administrator", "admin", models.RoleAdmin},
	{"Priya Raman", "planner", models.RolePlanningEngineer},
	{"Marco Bianchi", "supervisor", models.RoleSupervisor},
	{"Lena Vogel", "worker1", models.RoleProductionWorker},
	{"Tomás Ruiz", "worker2", models.RoleProductionWorker},
	{"Aiko Tanaka", "worker3", models.RoleProductionWorker},
	{"Jonas Berg", "worker4", models.RoleProductionWorker},
	{"Nadia Haddad", "tester1", models.RoleTestPersonnel},
	{"Owen Price", "tester2", models.RoleTestPersonnel},
	{"Grace Okafor", "inspector", models.RoleQualityInspector},
}

var seedOperations = []models.OperationInput{
	{Name: "Frame Installation", Stage: models.StageInstallation, StandardTime: 45},
	{Name: "Wiring Installation", Stage: models.StageInstallation, StandardTime: 60},
	{Name: "Motor Sub Assembly", Stage: models.StageSubAssembly, StandardTime: 90},
	{Name: "Control Board Assembly", Stage: models.StageSubAssembly, StandardTime: 75},
	{Name: "Functional Test", Stage: models.StageTesting, StandardTime: 30},
	{Name: "Burn-in Test", Stage: models.StageTesting, StandardTime: 120},
	{Name: "Final Touch and Cleaning", Stage: models.StageFinalTouch, StandardTime: 20},
	{Name: "Packaging", Stage: models.StagePacking, StandardTime: 15},
}

var (
	products    = []string{"Compressor Unit", "Chiller C-200", "Pump Controller", "Air Handler AH-5", "Heat Exchanger"}
	testTypes   = []string{"Functional", "Burn-in", "Leak", "Electrical Safety"}
	defectTypes = []string{"Scratched housing", "Loose connector", "Missing label", "Torque out of spec", "Solder bridge"}
	rejections  = []string{"Serial numbers do not match", "Actual time not plausible", "Missing notes"}
)

// EnsureSeeded fills every empty collection with generated demo data.
// Collections that already hold records are left alone, so repeated calls
// never duplicate data.
func (s *Store) EnsureSeeded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile
	now := s.now().UTC()

	if len(s.users) == 0 {
		hash, err := utils.HashPassword(DefaultPassword)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		for _, su := range seedUsers {
			s.users = append(s.users, userRecord{
				user: models.User{
					ID:       s.seedID(),
					Name:     su.name,
					Username: su.username,
					Email:    su.username + "@factory.local",
					Role:     su.role,
				},
				passwordHash: hash,
			})
		}
	}

	if len(s.operations) == 0 {
		for _, in := range seedOperations {
			s.operations = append(s.operations, models.Operation{
				ID:           s.seedID(),
				Name:         in.Name,
				Stage:        in.Stage,
				StandardTime: in.StandardTime,
			})
		}
	}

	technicians := s.usersWhere(func(u models.User) bool {
		return mapping.MapRoleToBackend(u.Role) == mapping.DefaultBackendRole
	})
	workers := s.usersWhere(func(u models.User) bool { return u.Role == models.RoleProductionWorker })
	testers := s.usersWhere(func(u models.User) bool { return u.Role == models.RoleTestPersonnel })
	inspectors := s.usersWhere(func(u models.User) bool { return u.Role == models.RoleQualityInspector })

	recount := false

	if len(s.jobOrders) == 0 {
		for i := 0; i < p.JobOrders; i++ {
			assigned := make([]string, 0, 2)
			for k := 0; k < 2 && len(technicians) > 0; k++ {
				assigned = append(assigned, technicians[(i+k)%len(technicians)].ID)
			}
			s.jobOrders = append(s.jobOrders, models.JobOrder{
				ID:         s.seedID(),
				Title:      fmt.Sprintf("JO-%04d %s", 1000+i, pick(s.rng, products)),
				Status:     pick(s.rng, models.JobOrderStatuses),
				DueDate:    now.AddDate(0, 0, s.rng.IntN(70)-10).Truncate(24 * time.Hour),
				CreatedAt:  now.AddDate(0, 0, -(1 + s.rng.IntN(90))),
				AssignedTo: assigned,
			})
		}
		recount = true
	}

	if len(s.devices) == 0 && len(s.jobOrders) > 0 {
		for i := 0; i < p.Devices; i++ {
			jo := s.jobOrders[i%len(s.jobOrders)]
			stage := pick(s.rng, models.DeviceStages)
			created := jo.CreatedAt.Add(time.Duration(s.rng.IntN(72)) * time.Hour)
			d := models.Device{
				ID:               s.seedID(),
				SerialNumber:     fmt.Sprintf("SN-%05d", i+1),
				JobOrderID:       jo.ID,
				Stage:            stage,
				CurrentOperation: s.operationNameFor(stage),
				CreatedAt:        created,
			}
			if stage == models.StageCompleted {
				done := created.Add(time.Duration(24+s.rng.IntN(240)) * time.Hour)
				d.CompletedAt = &done
			}
			s.devices = append(s.devices, d)
		}
		recount = true
	}

	if recount {
		s.recountJobOrders()
	}

	if len(s.tasks) == 0 && len(s.jobOrders) > 0 && len(technicians) > 0 && len(s.operations) > 0 {
		serials := s.serialsByJobOrder()
		for i := 0; i < p.TaskEntries; i++ {
			jo := s.jobOrders[i%len(s.jobOrders)]
			op := s.operations[i%len(s.operations)]
			start := now.Add(-time.Duration(s.rng.IntN(30*24*60)) * time.Minute)
			actual := roundTo(op.StandardTime*(0.7+s.rng.Float64()*0.7), 1)
			end := start.Add(time.Duration(actual * float64(time.Minute)))
			t := models.TaskEntry{
				ID:            s.seedID(),
				JobOrderID:    jo.ID,
				OperationID:   op.ID,
				TechnicianID:  technicians[i%len(technicians)].ID,
				SerialNumbers: pickSome(s.rng, serials[jo.ID], 3),
				StartTime:     start,
				EndTime:       &end,
				StandardTime:  op.StandardTime,
				ActualTime:    actual,
				Status:        pick(s.rng, models.TaskStatuses),
			}
			if t.Status == models.TaskRejected {
				t.RejectionReason = pick(s.rng, rejections)
			}
			s.tasks = append(s.tasks, t)
		}
	}

	if len(s.productionLogs) == 0 && len(s.devices) > 0 && len(workers) > 0 {
		for i := 0; i < p.ProductionLogs; i++ {
			d := s.devices[i%len(s.devices)]
			stage := d.Stage
			if stage == models.StageCompleted {
				stage = models.StagePacking
			}
			start := d.CreatedAt.Add(time.Duration(s.rng.IntN(48*60)) * time.Minute)
			l := models.ProductionWorkLog{
				ID:              s.seedID(),
				DeviceID:        d.ID,
				JobOrderID:      d.JobOrderID,
				WorkerID:        workers[i%len(workers)].ID,
				Operation:       s.operationNameFor(stage),
				Stage:           stage,
				StartTime:       start,
				DurationMinutes: float64(10 + s.rng.IntN(170)),
				Status:          pick(s.rng, models.WorkLogStatuses),
			}
			if l.Status == models.WorkLogCompleted {
				end := start.Add(time.Duration(l.DurationMinutes) * time.Minute)
				l.EndTime = &end
			}
			s.productionLogs = append(s.productionLogs, l)
		}
	}

	if len(s.testLogs) == 0 && len(s.devices) > 0 && len(testers) > 0 {
		for i := 0; i < p.TestLogs; i++ {
			d := s.devices[i%len(s.devices)]
			s.testLogs = append(s.testLogs, models.TestLog{
				ID:       s.seedID(),
				DeviceID: d.ID,
				TesterID: testers[i%len(testers)].ID,
				TestType: pick(s.rng, testTypes),
				Result:   pick(s.rng, models.TestResults),
				Measurements: map[string]string{
					"voltage": fmt.Sprintf("%.1f", 225+s.rng.Float64()*10),
					"current": fmt.Sprintf("%.2f", 0.8+s.rng.Float64()),
				},
				TestedAt: d.CreatedAt.Add(time.Duration(24+s.rng.IntN(96)) * time.Hour),
			})
		}
	}

	if len(s.inspections) == 0 && len(s.devices) > 0 && len(inspectors) > 0 {
		for i := 0; i < p.QualityInspections; i++ {
			d := s.devices[i%len(s.devices)]
			q := models.QualityInspection{
				ID:          s.seedID(),
				DeviceID:    d.ID,
				InspectorID: inspectors[i%len(inspectors)].ID,
				Result:      pick(s.rng, models.InspectionResults),
				Defects:     []string{},
				InspectedAt: d.CreatedAt.Add(time.Duration(48+s.rng.IntN(96)) * time.Hour),
			}
			if q.Result == models.InspectionRejected || q.Result == models.InspectionRework {
				q.Defects = pickSome(s.rng, defectTypes, 2)
			}
			s.inspections = append(s.inspections, q)
		}
	}

	s.logger.Debug("Mock store seeded",
		zap.Int("users", len(s.users)),
		zap.Int("job_orders", len(s.jobOrders)),
		zap.Int("devices", len(s.devices)),
		zap.Int("tasks", len(s.tasks)))
	return nil
}

// usersWhere returns users matching pred, or every user when none match.
// Round-robin assignment needs a non-empty pool. Caller holds the lock.
func (s *Store) usersWhere(pred func(models.User) bool) []models.User {
	var out, all []models.User
	for _, rec := range s.users {
		all = append(all, rec.user)
		if pred(rec.user) {
			out = append(out, rec.user)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// recountJobOrders derives device totals and progress. Caller holds the lock.
func (s *Store) recountJobOrders() {
	total := make(map[string]int)
	done := make(map[string]int)
	for _, d := range s.devices {
		total[d.JobOrderID]++
		if d.Stage == models.StageCompleted {
			done[d.JobOrderID]++
		}
	}
	for i := range s.jobOrders {
		jo := &s.jobOrders[i]
		jo.TotalDevices = total[jo.ID]
		jo.CompletedDevices = done[jo.ID]
		jo.Progress = models.ComputeProgress(jo.CompletedDevices, jo.TotalDevices)
	}
}

func (s *Store) serialsByJobOrder() map[string][]string {
	out := make(map[string][]string)
	for _, d := range s.devices {
		out[d.JobOrderID] = append(out[d.JobOrderID], d.SerialNumber)
	}
	return out
}

func (s *Store) operationNameFor(stage models.DeviceStage) string {
	var names []string
	for _, op := range s.operations {
		if op.Stage == stage {
			names = append(names, op.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return pick(s.rng, names)
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// pickSome returns between 1 and max distinct items, or none for an empty pool
func pickSome(r *rand.Rand, pool []string, max int) []string {
	if len(pool) == 0 {
		return []string{}
	}
	n := 1 + r.IntN(max)
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range r.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

func roundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}

// seedID draws a v4 UUID from the store's generator so a fixed seed
// reproduces the same ids. Callers hold s.mu.
func (s *Store) seedID() string {
	id, err := uuid.NewRandomFromReader(rngReader{s.rng})
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type rngReader struct{ r *rand.Rand }

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.Uint32())
	}
	return len(p), nil
}

// Package mockstore is the in-memory data source used in mock mode and by
// the simulated backend. A Store is created by the composition root and
// filled lazily by EnsureSeeded.
package mockstore

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/utils"
	"go.uber.org/zap"
)

// DefaultPassword is the password of every seeded user
const DefaultPassword = "password"

var (
	// ErrNotFound is returned when an id does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when a username is already taken
	ErrDuplicateUsername = errors.New("duplicate username")
)

type userRecord struct {
	user         models.User
	passwordHash string
}

// Store holds every mock collection. All methods are safe for concurrent use
// and return copies.
type Store struct {
	mu      sync.Mutex
	rng     *rand.Rand
	profile Profile
	logger  *zap.Logger
	now     func() time.Time

	users          []userRecord
	operations     []models.Operation
	jobOrders      []models.JobOrder
	devices        []models.Device
	tasks          []models.TaskEntry
	productionLogs []models.ProductionWorkLog
	testLogs       []models.TestLog
	inspections    []models.QualityInspection
	alerts         []models.Alert

	alertHooks []func(models.Alert)
}

// Option configures a Store
type Option func(*Store)

// WithProfile overrides the collection sizes
func WithProfile(p Profile) Option {
	return func(s *Store) { s.profile = p }
}

// WithSeed makes the generated content reproducible. 0 keeps time-based seeding.
func WithSeed(seed uint64) Option {
	return func(s *Store) {
		if seed != 0 {
			s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store. Call EnsureSeeded before serving reads.
func New(opts ...Option) *Store {
	seed := uint64(time.Now().UnixNano())
	s := &Store{
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
		profile: DefaultProfile(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnAlert registers a hook that receives every alert added to the store
func (s *Store) OnAlert(fn func(models.Alert)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertHooks = append(s.alertHooks, fn)
}

// Counts reports the size of each collection
type Counts struct {
	Users              int
	Operations         int
	JobOrders          int
	Devices            int
	TaskEntries        int
	ProductionLogs     int
	TestLogs           int
	QualityInspections int
	Alerts             int
}

// Counts returns the current collection sizes
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Users:              len(s.users),
		Operations:         len(s.operations),
		JobOrders:          len(s.jobOrders),
		Devices:            len(s.devices),
		TaskEntries:        len(s.tasks),
		ProductionLogs:     len(s.productionLogs),
		TestLogs:           len(s.testLogs),
		QualityInspections: len(s.inspections),
		Alerts:             len(s.alerts),
	}
}

// ---- users ----

// Users returns every user
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	for i, rec := range s.users {
		out[i] = rec.user
	}
	return out
}

// User returns one user by id
func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.userIndex(id); i >= 0 {
		return s.users[i].user, true
	}
	return models.User{}, false
}

// Authenticate checks a username and password. Usernames match case-insensitively.
func (s *Store) Authenticate(username, password string) (models.User, bool) {
	s.mu.Lock()
	var rec *userRecord
	for i := range s.users {
		if strings.EqualFold(s.users[i].user.Username, username) {
			r := s.users[i]
			rec = &r
			break
		}
	}
	s.mu.Unlock()

	// bcrypt is slow; compare outside the lock
	if rec == nil || !utils.CheckPasswordHash(password, rec.passwordHash) {
		return models.User{}, false
	}
	return rec.user, true
}

// CreateUser adds a user. An empty password becomes DefaultPassword.
func (s *Store) CreateUser(in models.UserInput) (models.User, error) {
	password := in.Password
	if password == "" {
		password = DefaultPassword
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(in.Username, "") {
		return models.User{}, ErrDuplicateUsername
	}
	u := models.User{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Role:     in.Role,
		Avatar:   in.Avatar,
	}
	if !u.Role.Valid() {
		u.Role = models.RoleProductionWorker
	}
	s.users = append(s.users, userRecord{user: u, passwordHash: hash})
	return u, nil
}

// UpdateUser replaces a user's fields. An empty password keeps the old one.
func (s *Store) UpdateUser(id string, in models.UserInput) (models.User, error) {
	var hash string
	if in.Password != "" {
		h, err := utils.HashPassword(in.Password)
		if err != nil {
			return models.User{}, err
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, ErrNotFound
	}
	if in.Username != "" && s.usernameTaken(in.Username, id) {
		return models.User{}, ErrDuplicateUsername
	}
	rec := &s.users[i]
	if in.Name != "" {
		rec.user.Name = in.Name
	}
	if in.Username != "" {
		rec.user.Username = in.Username
	}
	if in.Email != "" {
		rec.user.Email = in.Email
	}
	if in.Role.Valid() {
		rec.user.Role = in.Role
	}
	if in.Avatar != "" {
		rec.user.Avatar = in.Avatar
	}
	if hash != "" {
		rec.passwordHash = hash
	}
	return rec.user, nil
}

// DeleteUser removes a user. Unknown ids return false.
func (s *Store) DeleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return false
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return true
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].user.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) usernameTaken(username, exceptID string) bool {
	for _, rec := range s.users {
		if rec.user.ID != exceptID && strings.EqualFold(rec.user.Username, username) {
			return true
		}
	}
	return false
}

// ---- job orders ----

// JobOrders returns every job order
func (s *Store) JobOrders() []models.JobOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.JobOrder, len(s.jobOrders))
	for i, jo := range s.jobOrders {
		out[i] = cloneJobOrder(jo)
	}
	return out
}

// JobOrder returns one job order by id
func (s *Store) JobOrder(id string) (models.JobOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, jo := range s.jobOrders {
		if jo.ID == id {
			return cloneJobOrder(jo), true
		}
	}
	return models.JobOrder{}, false
}

// CreateJobOrder adds a job order
func (s *Store) CreateJobOrder(in models.JobOrderInput) models.JobOrder {
	status := in.Status
	if status == "" {
		status = models.JobOrderOpen
	}
	jo := models.JobOrder{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Status:       status,
		TotalDevices: in.TotalDevices,
		DueDate:      in.DueDate,
		CreatedAt:    s.now().UTC(),
		AssignedTo:   append([]string{}, in.AssignedTo...),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobOrders = append(s.jobOrders, jo)
	return cloneJobOrder(jo)
}

// UpdateJobOrder replaces a job order's editable fields
func (s *Store) UpdateJobOrder(id string, in models.JobOrderInput) (models.JobOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobOrders {
		jo := &s.jobOrders[i]
		if jo.ID != id {
			continue
		}
		if in.Title != "" {
			jo.Title = in.Title
		}
		if in.Description != "" {
			jo.Description = in.Description
		}
		if in.Status != "" {
			jo.Status = in.Status
		}
		if in.TotalDevices > 0 {
			jo.TotalDevices = in.TotalDevices
		}
		if !in.DueDate.IsZero() {
			jo.DueDate = in.DueDate
		}
		if in.AssignedTo != nil {
			jo.AssignedTo = append([]string{}, in.AssignedTo...)
		}
		jo.Progress = models.ComputeProgress(jo.CompletedDevices, jo.TotalDevices)
		return cloneJobOrder(*jo), nil
	}
	return models.JobOrder{}, ErrNotFound
}

// DeleteJobOrder removes a job order. Devices and tasks that reference it are kept.
func (s *Store) DeleteJobOrder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobOrders {
		if s.jobOrders[i].ID == id {
			s.jobOrders = append(s.jobOrders[:i], s.jobOrders[i+1:]...)
			return true
		}
	}
	return false
}

func cloneJobOrder(jo models.JobOrder) models.JobOrder {
	jo.AssignedTo = append([]string{}, jo.AssignedTo...)
	return jo
}

// ---- tasks ----

// Tasks returns every task entry
func (s *Store) Tasks() []models.TaskEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TaskEntry, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// AddTask records a submitted task completion
func (s *Store) AddTask(sub models.TaskSubmission) models.TaskEntry {
	start := sub.StartTime
	if start.IsZero() {
		start = s.now().UTC()
	}
	t := models.TaskEntry{
		ID:            uuid.NewString(),
		JobOrderID:    sub.JobOrderID,
		OperationID:   sub.OperationID,
		TechnicianID:  sub.TechnicianID,
		SerialNumbers: append([]string{}, sub.SerialNumbers...),
		StartTime:     start,
		EndTime:       sub.EndTime,
		StandardTime:  sub.StandardTime,
		ActualTime:    sub.ActualTime,
		Notes:         sub.Notes,
		Status:        models.TaskSubmitted,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return cloneTask(t)
}

// SetTaskStatus approves or rejects a task
func (s *Store) SetTaskStatus(id string, status models.TaskStatus, reason string) (models.TaskEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ID != id {
			continue
		}
		t.Status = status
		if status == models.TaskRejected {
			t.RejectionReason = reason
		} else {
			t.RejectionReason = ""
		}
		return cloneTask(*t), nil
	}
	return models.TaskEntry{}, ErrNotFound
}

func cloneTask(t models.TaskEntry) models.TaskEntry {
	t.SerialNumbers = append([]string{}, t.SerialNumbers...)
	if t.EndTime != nil {
		end := *t.EndTime
		t.EndTime = &end
	}
	return t
}

// ---- operations ----

// Operations returns every operation template
func (s *Store) Operations() []models.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Operation{}, s.operations...)
}

// CreateOperation adds an operation template
func (s *Store) CreateOperation(in models.OperationInput) models.Operation {
	op := models.Operation{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Description:  in.Description,
		Stage:        in.Stage,
		StandardTime: in.StandardTime,
	}
	if !op.Stage.Valid() {
		op.Stage = models.StageInstallation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = append(s.operations, op)
	return op
}

// UpdateOperation replaces an operation template's fields
func (s *Store) UpdateOperation(id string, in models.OperationInput) (models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.operations {
		op := &s.operations[i]
		if op.ID != id {
			continue
		}
		if in.Name != "" {
			op.Name = in.Name
		}
		if in.Description != "" {
			op.Description = in.Description
		}
		if in.Stage.Valid() {
			op.Stage = in.Stage
		}
		if in.StandardTime > 0 {
			op.StandardTime = in.StandardTime
		}
		return *op, nil
	}
	return models.Operation{}, ErrNotFound
}

// DeleteOperation removes an operation template. Unknown ids return false.
func (s *Store) DeleteOperation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.operations {
		if s.operations[i].ID == id {
			s.operations = append(s.operations[:i], s.operations[i+1:]...)
			return true
		}
	}
	return false
}

// ---- devices and history ----

// Devices returns every device
func (s *Store) Devices() []models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.devices, cloneDevice)
}

// ProductionLogs returns every production work log
func (s *Store) ProductionLogs() []models.ProductionWorkLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.productionLogs, cloneProductionLog)
}

// AddProductionLog appends a production work log
func (s *Store) AddProductionLog(l models.ProductionWorkLog) models.ProductionWorkLog {
	l.ID = uuid.NewString()
	if l.StartTime.IsZero() {
		l.StartTime = s.now().UTC()
	}
	if l.Status == "" {
		l.Status = models.WorkLogInProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productionLogs = append(s.productionLogs, cloneProductionLog(l))
	return l
}

// TestLogs returns every test log
func (s *Store) TestLogs() []models.TestLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.testLogs, cloneTestLog)
}

// AddTestLog appends a test log
func (s *Store) AddTestLog(l models.TestLog) models.TestLog {
	l.ID = uuid.NewString()
	if l.TestedAt.IsZero() {
		l.TestedAt = s.now().UTC()
	}
	if l.Result == "" {
		l.Result = models.TestPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testLogs = append(s.testLogs, cloneTestLog(l))
	return l
}

// QualityInspections returns every inspection
func (s *Store) QualityInspections() []models.QualityInspection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.inspections, cloneInspection)
}

// AddQualityInspection appends an inspection
func (s *Store) AddQualityInspection(q models.QualityInspection) models.QualityInspection {
	q.ID = uuid.NewString()
	if q.InspectedAt.IsZero() {
		q.InspectedAt = s.now().UTC()
	}
	if q.Result == "" {
		q.Result = models.InspectionPending
	}
	if q.Defects == nil {
		q.Defects = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspections = append(s.inspections, cloneInspection(q))
	return q
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDevice(d models.Device) models.Device {
	d.CompletedAt = cloneTimePtr(d.CompletedAt)
	return d
}

func cloneProductionLog(l models.ProductionWorkLog) models.ProductionWorkLog {
	l.EndTime = cloneTimePtr(l.EndTime)
	return l
}

func cloneTestLog(l models.TestLog) models.TestLog {
	if l.Measurements != nil {
		m := make(map[string]string, len(l.Measurements))
		for k, v := range l.Measurements {
			m[k] = v
		}
		l.Measurements = m
	}
	return l
}

func cloneInspection(q models.QualityInspection) models.QualityInspection {
	q.Defects = append([]string{}, q.Defects...)
	return q
}

// ---- alerts ----

// Alerts returns every alert, oldest first
func (s *Store) Alerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Alert{}, s.alerts...)
}

// AddAlert stores an alert and notifies the hooks
func (s *Store) AddAlert(a models.Alert) models.Alert {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	if a.Severity == "" {
		a.Severity = models.AlertInfo
	}

	s.mu.Lock()
	s.alerts = append(s.alerts, a)
	hooks := append([]func(models.Alert){}, s.alertHooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(a)
	}
	return a
}

// ---- metrics ----

// PlanningMetrics summarizes the current collections
func (s *Store) PlanningMetrics() models.PlanningMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := models.PlanningMetrics{TotalJobOrders: len(s.jobOrders), TotalDevices: len(s.devices)}
	for _, jo := range s.jobOrders {
		switch jo.Status {
		case models.JobOrderOpen:
			m.OpenJobOrders++
		case models.JobOrderInProgress:
			m.InProgressJobOrders++
		case models.JobOrderCompleted:
			m.CompletedJobOrders++
		case models.JobOrderOnHold:
			m.OnHoldJobOrders++
		}
	}
	for _, d := range s.devices {
		if d.Stage == models.StageCompleted {
			m.CompletedDevices++
		}
	}

	var effSum float64
	var effN int
	for _, t := range s.tasks {
		if t.Status == models.TaskSubmitted {
			m.PendingApprovals++
		}
		if t.Status == models.TaskApproved && t.ActualTime > 0 {
			effSum += t.StandardTime / t.ActualTime * 100
			effN++
		}
	}
	if effN > 0 {
		m.AverageEfficiency = roundTo(effSum/float64(effN), 1)
	}
	return m
}

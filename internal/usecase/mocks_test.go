package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/pkg/jwt"
	"psychiatry-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB returns a handle that never connects; the mocks below ignore it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test password=test dbname=test port=5432 sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestValidator(t *testing.T) *validator.CustomValidator {
	t.Helper()
	v := validator.NewValidator()
	if err := RegisterAppointmentValidations(v); err != nil {
		t.Fatalf("register validations: %v", err)
	}
	return v
}

func strPtr(s string) *string { return &s }

var errDatastore = errors.New("connection reset by peer")

// mockAppointmentRepo is an in-memory appointment_requests table.
type mockAppointmentRepo struct {
	mu           sync.Mutex
	records      map[uuid.UUID]*entity.AppointmentRequest
	psychiatrist map[uuid.UUID]bool
	clock        time.Time

	createCalls int
	writeCalls  int
	failWith    error
}

func newMockAppointmentRepo(psychiatristIDs ...uuid.UUID) *mockAppointmentRepo {
	known := make(map[uuid.UUID]bool, len(psychiatristIDs))
	for _, id := range psychiatristIDs {
		known[id] = true
	}
	return &mockAppointmentRepo{
		records:      make(map[uuid.UUID]*entity.AppointmentRequest),
		psychiatrist: known,
		clock:        time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockAppointmentRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, db *gorm.DB, request *entity.AppointmentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.failWith != nil {
		return m.failWith
	}
	if !m.psychiatrist[request.PsychiatristID] {
		return &pgconn.PgError{Code: "23503", ConstraintName: "fk_appointment_requests_psychiatrist"}
	}

	request.ID = uuid.New()
	request.CreatedAt = m.tick()
	request.UpdatedAt = request.CreatedAt
	stored := *request
	m.records[request.ID] = &stored
	return nil
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.AppointmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	found := *record
	return &found, nil
}

func (m *mockAppointmentRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentRequestFilter) ([]entity.AppointmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	var requests []entity.AppointmentRequest
	for _, record := range m.records {
		if filter.PsychiatristID != nil && record.PsychiatristID != *filter.PsychiatristID {
			continue
		}
		if filter.PatientEmail != "" && !strings.EqualFold(record.PatientEmail, filter.PatientEmail) {
			continue
		}
		requests = append(requests, *record)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (m *mockAppointmentRepo) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if m.failWith != nil {
		return 0, m.failWith
	}
	record, ok := m.records[id]
	if !ok {
		return 0, nil
	}
	applyAppointmentFields(record, fields)
	record.UpdatedAt = m.tick()
	return 1, nil
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if m.failWith != nil {
		return 0, m.failWith
	}
	record, ok := m.records[id]
	if !ok {
		return 0, nil
	}
	record.Status = status
	record.UpdatedAt = m.tick()
	return 1, nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if m.failWith != nil {
		return 0, m.failWith
	}
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

func (m *mockAppointmentRepo) CountByStatus(ctx context.Context, db *gorm.DB) (map[entity.AppointmentStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	counts := make(map[entity.AppointmentStatus]int64)
	for _, record := range m.records {
		counts[record.Status]++
	}
	return counts, nil
}

// applyAppointmentFields mirrors what an UPDATE ... SET col = value does to a row.
func applyAppointmentFields(record *entity.AppointmentRequest, fields map[string]any) {
	for column, value := range fields {
		switch column {
		case "patient_name":
			record.PatientName = value.(string)
		case "patient_email":
			record.PatientEmail = value.(string)
		case "preferred_date":
			if date, ok := value.(time.Time); ok {
				record.Legacy.PreferredDate = &date
			} else {
				record.Legacy.PreferredDate = nil
			}
		case "preferred_time":
			record.Legacy.PreferredTime = value.(*string)
		case "message":
			record.Legacy.Message = value.(*string)
		case "preferred_appointment_type":
			record.Intake.PreferredAppointmentType = value.(*string)
		case "preferred_times":
			record.Intake.PreferredTimes = value.(pq.StringArray)
		case "what_brings_you":
			record.Intake.WhatBringsYou = value.(*string)
		case "hoping_to_work_on":
			record.Intake.HopingToWorkOn = value.(pq.StringArray)
		case "other_work_on":
			record.Intake.OtherWorkOn = value.(*string)
		case "spoken_before":
			record.Intake.SpokenBefore = value.(*string)
		case "anything_else":
			record.Intake.AnythingElse = value.(*string)
		}
	}
}

type mockPsychiatristRepo struct {
	mu          sync.Mutex
	records     map[uuid.UUID]*entity.Psychiatrist
	findAllHits int
	updates     []map[string]any

	// onFindAll runs after the rows are read, outside the lock.
	onFindAll func()
}

func newMockPsychiatristRepo(psychiatrists ...entity.Psychiatrist) *mockPsychiatristRepo {
	m := &mockPsychiatristRepo{records: make(map[uuid.UUID]*entity.Psychiatrist)}
	for i := range psychiatrists {
		p := psychiatrists[i]
		m.records[p.ID] = &p
	}
	return m
}

func (m *mockPsychiatristRepo) Create(ctx context.Context, db *gorm.DB, psychiatrist *entity.Psychiatrist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	psychiatrist.ID = uuid.New()
	stored := *psychiatrist
	m.records[psychiatrist.ID] = &stored
	return nil
}

func (m *mockPsychiatristRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Psychiatrist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	found := *record
	return &found, nil
}

func (m *mockPsychiatristRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Psychiatrist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if strings.EqualFold(record.Email, email) {
			found := *record
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockPsychiatristRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Psychiatrist, error) {
	m.mu.Lock()
	m.findAllHits++
	var psychiatrists []entity.Psychiatrist
	for _, record := range m.records {
		psychiatrists = append(psychiatrists, *record)
	}
	hook := m.onFindAll
	m.mu.Unlock()

	sort.Slice(psychiatrists, func(i, j int) bool {
		return psychiatrists[i].Name < psychiatrists[j].Name
	})
	if hook != nil {
		hook()
	}
	return psychiatrists, nil
}

func (m *mockPsychiatristRepo) UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, fields)
	record, ok := m.records[id]
	if !ok {
		return 0, nil
	}
	for column, value := range fields {
		switch column {
		case "name":
			record.Name = value.(string)
		case "specialty":
			record.Specialty = value.(string)
		case "location":
			record.Location = value.(string)
		case "bio":
			record.Bio = value.(string)
		case "availability":
			if v, ok := value.(string); ok {
				record.Availability = &v
			} else {
				record.Availability = nil
			}
		case "rating":
			if v, ok := value.(decimal.Decimal); ok {
				record.Rating = &v
			} else {
				record.Rating = nil
			}
		}
	}
	return 1, nil
}

func (m *mockPsychiatristRepo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

type mockPatientRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entity.Patient
	err     error
}

func newMockPatientRepo(patients ...entity.Patient) *mockPatientRepo {
	m := &mockPatientRepo{records: make(map[uuid.UUID]*entity.Patient)}
	for i := range patients {
		p := patients[i]
		m.records[p.ID] = &p
	}
	return m
}

func (m *mockPatientRepo) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *patient
	m.records[patient.ID] = &stored
	return nil
}

func (m *mockPatientRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	found := *record
	return &found, nil
}

func (m *mockPatientRepo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.records)), nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMockUserRepo(users ...entity.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}
	user.ID = uuid.New()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			found := *user
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	found := *user
	return &found, nil
}

type mockRoleRepo struct{}

func (mockRoleRepo) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	for _, id := range []int{entity.RoleIDAdmin, entity.RoleIDPsychiatrist, entity.RoleIDPatient} {
		if entity.RoleNameByID(id) == name {
			return &entity.Role{ID: id, RoleName: name}, nil
		}
	}
	return nil, nil
}

// fakeTokenStore keeps issued token ids in memory.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]bool)}
}

func tokenKey(userID uuid.UUID, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + userID.String() + ":" + tokenID
}

func (s *fakeTokenStore) Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenKey(userID, tokenType, tokenID)] = true
	return nil
}

func (s *fakeTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tokenKey(userID, tokenType, tokenID)], nil
}

func (s *fakeTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenKey(userID, tokenType, tokenID))
	return nil
}

type fakeDirectoryCache struct {
	mu            sync.Mutex
	entries       []entity.Psychiatrist
	filled        bool
	version       int64
	invalidations int
}

func (c *fakeDirectoryCache) Get(ctx context.Context) ([]entity.Psychiatrist, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries, c.filled, nil
}

func (c *fakeDirectoryCache) Version(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *fakeDirectoryCache) Set(ctx context.Context, version int64, psychiatrists []entity.Psychiatrist) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return false, nil
	}
	c.entries = psychiatrists
	c.filled = true
	return true, nil
}

func (c *fakeDirectoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.filled = false
	c.version++
	c.invalidations++
	return nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) record(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogEvent(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, details entity.JSON) error {
	return s.record(action)
}

func (s *fakeAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue any) error {
	return s.record(action)
}

func (s *fakeAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue any) error {
	return s.record(action)
}

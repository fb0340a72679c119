package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/pkg/validator"

	"github.com/google/uuid"
)

type appointmentFixture struct {
	uc            AppointmentUsecase
	repo          *mockAppointmentRepo
	psychiatrists *mockPsychiatristRepo

	p1, p2 entity.Psychiatrist

	admin    *entity.Session
	doctor1  *entity.Session
	doctor2  *entity.Session
	alice    *entity.Session
	stranger *entity.Session
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	p1 := entity.Psychiatrist{ID: uuid.New(), Name: "Dr. Ada", Email: "ada@clinic.example"}
	p2 := entity.Psychiatrist{ID: uuid.New(), Name: "Dr. Ben", Email: "ben@clinic.example"}
	psychiatrists := newMockPsychiatristRepo(p1, p2)
	repo := newMockAppointmentRepo(p1.ID, p2.ID)

	return &appointmentFixture{
		uc:            NewAppointmentUsecase(newTestDB(t), newTestLogger(), validator.NewValidator(), repo, psychiatrists),
		repo:          repo,
		psychiatrists: psychiatrists,
		p1:            p1,
		p2:            p2,
		admin:         &entity.Session{UserID: uuid.New(), Email: "admin@example.com", RoleID: entity.RoleIDAdmin},
		doctor1:       &entity.Session{UserID: uuid.New(), Email: "ADA@clinic.example", RoleID: entity.RoleIDPsychiatrist},
		doctor2:       &entity.Session{UserID: uuid.New(), Email: "ben@clinic.example", RoleID: entity.RoleIDPsychiatrist},
		alice:         &entity.Session{UserID: uuid.New(), Email: "alice@example.com", RoleID: entity.RoleIDPatient},
		stranger:      &entity.Session{UserID: uuid.New(), Email: "eve@example.com", RoleID: entity.RoleIDPatient},
	}
}

func (f *appointmentFixture) scenarioA(psychiatristID uuid.UUID) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		PsychiatristID:           psychiatristID.String(),
		PatientName:              "Alice",
		PatientEmail:             "alice@example.com",
		PreferredAppointmentType: strPtr("virtual"),
		PreferredTimes:           []string{"Weekday mornings"},
		WhatBringsYou:            strPtr("stress"),
		HopingToWorkOn:           []string{"Not sure yet"},
		SpokenBefore:             strPtr("no"),
	}
}

func (f *appointmentFixture) create(t *testing.T, req *dto.CreateAppointmentRequest) *dto.AppointmentResponse {
	t.Helper()
	created, err := f.uc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func TestCreateScenarioA(t *testing.T) {
	f := newAppointmentFixture(t)

	created := f.create(t, f.scenarioA(f.p1.ID))
	if created.Status != "pending" {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
	if created.PsychiatristID != f.p1.ID {
		t.Errorf("psychiatrist_id = %s, want %s", created.PsychiatristID, f.p1.ID)
	}
	if f.repo.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", f.repo.createCalls)
	}
}

func TestCreateForcesPending(t *testing.T) {
	f := newAppointmentFixture(t)

	for _, status := range []string{"approved", "declined", "completed", "archived"} {
		req := f.scenarioA(f.p1.ID)
		req.Status = strPtr(status)
		created := f.create(t, req)
		if created.Status != "pending" {
			t.Errorf("input status %q: stored status = %q, want pending", status, created.Status)
		}
	}
}

func TestCreateMissingFieldWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*dto.CreateAppointmentRequest)
		field  string
	}{
		{"psychiatrist", func(r *dto.CreateAppointmentRequest) { r.PsychiatristID = "" }, "psychiatrist_id"},
		{"name", func(r *dto.CreateAppointmentRequest) { r.PatientName = "" }, "patient_name"},
		{"email", func(r *dto.CreateAppointmentRequest) { r.PatientEmail = " " }, "patient_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			req := f.scenarioA(f.p1.ID)
			tt.modify(req)

			_, err := f.uc.Create(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, ErrMissingField) {
				t.Fatalf("error = %v, want MissingField", err)
			}
			if !reflect.DeepEqual(verr.Fields, []string{tt.field}) {
				t.Errorf("fields = %v, want [%s]", verr.Fields, tt.field)
			}
			if f.repo.createCalls != 0 {
				t.Errorf("create calls = %d, want 0", f.repo.createCalls)
			}
		})
	}
}

func TestCreateScenarioB(t *testing.T) {
	f := newAppointmentFixture(t)

	for _, email := range []string{"not-an-email", "alice@", "@example.com", "alice@example.c", "alice example@example.com"} {
		req := f.scenarioA(f.p1.ID)
		req.PatientEmail = email

		_, err := f.uc.Create(context.Background(), req)
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("email %q: error = %v, want InvalidEmail", email, err)
		}
	}
	if f.repo.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", f.repo.createCalls)
	}
}

func TestCreateUnknownPsychiatrist(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.uc.Create(context.Background(), f.scenarioA(uuid.New()))
	if !errors.Is(err, ErrPsychiatristNotFound) {
		t.Fatalf("error = %v, want ErrPsychiatristNotFound", err)
	}
}

func TestCreateSurfacesDatastoreError(t *testing.T) {
	f := newAppointmentFixture(t)
	f.repo.failWith = errDatastore

	_, err := f.uc.Create(context.Background(), f.scenarioA(f.p1.ID))
	if !errors.Is(err, errDatastore) {
		t.Fatalf("error = %v, want datastore error unchanged", err)
	}
}

func TestSetStatusScenarioC(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))

	for _, status := range []string{"archived", "PENDING", "cancelled"} {
		_, err := f.uc.SetStatus(context.Background(), f.admin, &dto.UpdateAppointmentStatusRequest{
			ID:     created.ID.String(),
			Status: status,
		})
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("status %q: error = %v, want InvalidStatus", status, err)
		}
		if err.Error() != "Invalid status. Must be one of: pending, approved, declined, completed" {
			t.Errorf("message = %q", err.Error())
		}
	}

	if f.repo.writeCalls != 0 {
		t.Errorf("write calls = %d, want 0", f.repo.writeCalls)
	}
	got, err := f.uc.Get(context.Background(), f.admin, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, created) {
		t.Errorf("record changed:\n got %+v\nwant %+v", got, created)
	}
}

func TestSetStatusValidation(t *testing.T) {
	f := newAppointmentFixture(t)

	tests := []struct {
		name string
		req  dto.UpdateAppointmentStatusRequest
		kind error
	}{
		{"missing status", dto.UpdateAppointmentStatusRequest{ID: uuid.NewString()}, ErrMissingField},
		{"missing id", dto.UpdateAppointmentStatusRequest{Status: "approved"}, ErrMissingField},
		{"bad id", dto.UpdateAppointmentStatusRequest{ID: "42", Status: "approved"}, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := f.uc.SetStatus(context.Background(), f.admin, &req); !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestSetStatusIdempotent(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))
	req := &dto.UpdateAppointmentStatusRequest{ID: created.ID.String(), Status: "approved"}

	first, err := f.uc.SetStatus(context.Background(), f.doctor1, req)
	if err != nil {
		t.Fatalf("first setStatus: %v", err)
	}
	second, err := f.uc.SetStatus(context.Background(), f.doctor1, req)
	if err != nil {
		t.Fatalf("second setStatus: %v", err)
	}

	if first.Status != "approved" || second.Status != "approved" {
		t.Fatalf("statuses = %q, %q, want approved", first.Status, second.Status)
	}
	second.UpdatedAt = first.UpdatedAt
	if !reflect.DeepEqual(first, second) {
		t.Errorf("observable state differs:\n first %+v\nsecond %+v", first, second)
	}
}

func TestSetStatusAnyTransition(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))

	for _, status := range []string{"completed", "pending", "declined", "approved"} {
		got, err := f.uc.SetStatus(context.Background(), f.admin, &dto.UpdateAppointmentStatusRequest{
			ID:     created.ID.String(),
			Status: status,
		})
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("status = %q, want %q", got.Status, status)
		}
	}
}

func TestSetStatusPolicy(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))
	req := &dto.UpdateAppointmentStatusRequest{ID: created.ID.String(), Status: "declined"}

	if _, err := f.uc.SetStatus(context.Background(), f.alice, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("requester: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.SetStatus(context.Background(), f.doctor2, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("other psychiatrist: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.SetStatus(context.Background(), nil, req); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("no session: error = %v, want ErrUnauthorized", err)
	}
	if f.repo.writeCalls != 0 {
		t.Errorf("write calls = %d, want 0", f.repo.writeCalls)
	}
}

func TestSetStatusNotFound(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.uc.SetStatus(context.Background(), f.admin, &dto.UpdateAppointmentStatusRequest{
		ID:     uuid.NewString(),
		Status: "approved",
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestUpdatePartialLaw(t *testing.T) {
	f := newAppointmentFixture(t)
	req := f.scenarioA(f.p1.ID)
	req.PreferredDate = strPtr("2025-03-14")
	req.Message = strPtr("mornings please")
	created := f.create(t, req)

	patch := &dto.UpdateAppointmentRequest{PatientName: strPtr("X")}
	patch.Mark("patient_name")

	updated, err := f.uc.Update(context.Background(), f.alice, created.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PatientName != "X" {
		t.Errorf("patient_name = %q, want X", updated.PatientName)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}

	updated.PatientName = created.PatientName
	updated.UpdatedAt = created.UpdatedAt
	if !reflect.DeepEqual(updated, created) {
		t.Errorf("other fields changed:\n got %+v\nwant %+v", updated, created)
	}
}

func TestUpdateNullClears(t *testing.T) {
	f := newAppointmentFixture(t)
	req := f.scenarioA(f.p1.ID)
	req.Message = strPtr("call me")
	req.AnythingElse = strPtr("thanks")
	created := f.create(t, req)

	patch := &dto.UpdateAppointmentRequest{}
	patch.Mark("message")

	updated, err := f.uc.Update(context.Background(), f.admin, created.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Message != nil {
		t.Errorf("message = %q, want null", *updated.Message)
	}
	if updated.AnythingElse == nil || *updated.AnythingElse != "thanks" {
		t.Errorf("anything_else = %v, want untouched", updated.AnythingElse)
	}
	if updated.Status != "pending" {
		t.Errorf("status = %q, want pending", updated.Status)
	}
}

func TestUpdateRejectsInvalidField(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))

	patch := &dto.UpdateAppointmentRequest{PreferredTimes: []string{"Lunchtime"}}
	patch.Mark("preferred_times")

	_, err := f.uc.Update(context.Background(), f.alice, created.ID, patch)
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("error = %v, want InvalidEnumValue", err)
	}
	if f.repo.writeCalls != 0 {
		t.Errorf("write calls = %d, want 0", f.repo.writeCalls)
	}
}

func TestUpdateCannotEmptyRequiredIntakeFields(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))

	patch := &dto.UpdateAppointmentRequest{PreferredTimes: []string{}}
	patch.Mark("what_brings_you", "preferred_times", "anything_else")

	_, err := f.uc.Update(context.Background(), f.alice, created.ID, patch)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("error = %v, want MissingField", err)
	}
	if want := "Missing required fields: preferred_times, what_brings_you"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
	if f.repo.writeCalls != 0 {
		t.Errorf("write calls = %d, want 0", f.repo.writeCalls)
	}
}

func TestUpdateLegacyRequestMayLeaveIntakeEmpty(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, &dto.CreateAppointmentRequest{
		PsychiatristID: f.p1.ID.String(),
		PatientName:    "Alice",
		PatientEmail:   "alice@example.com",
		Message:        strPtr("any weekday"),
	})

	patch := &dto.UpdateAppointmentRequest{}
	patch.Mark("what_brings_you", "message")

	updated, err := f.uc.Update(context.Background(), f.alice, created.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Message != nil || updated.WhatBringsYou != nil {
		t.Errorf("message = %v, what_brings_you = %v, want both null", updated.Message, updated.WhatBringsYou)
	}
}

func TestUpdatePolicyAndNotFound(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))
	patch := &dto.UpdateAppointmentRequest{Message: strPtr("hi")}
	patch.Mark("message")

	if _, err := f.uc.Update(context.Background(), f.doctor1, created.ID, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("psychiatrist: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.Update(context.Background(), f.stranger, created.ID, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.Update(context.Background(), f.admin, uuid.New(), patch); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("unknown id: error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestListScenarioD(t *testing.T) {
	f := newAppointmentFixture(t)
	first := f.create(t, f.scenarioA(f.p1.ID))
	f.create(t, f.scenarioA(f.p2.ID))
	second := f.create(t, f.scenarioA(f.p1.ID))

	filter := entity.AppointmentRequestFilter{PsychiatristID: &f.p1.ID}
	list, err := f.uc.List(context.Background(), f.doctor1, filter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first [%s %s]", list[0].ID, list[1].ID, second.ID, first.ID)
	}
	for _, item := range list {
		if item.PsychiatristID != f.p1.ID {
			t.Errorf("unexpected psychiatrist %s in list", item.PsychiatristID)
		}
	}
}

func TestListByPatientEmail(t *testing.T) {
	f := newAppointmentFixture(t)
	f.create(t, f.scenarioA(f.p1.ID))
	other := f.scenarioA(f.p2.ID)
	other.PatientEmail = "eve@example.com"
	f.create(t, other)

	list, err := f.uc.List(context.Background(), f.alice, entity.AppointmentRequestFilter{PatientEmail: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].PatientEmail != "alice@example.com" {
		t.Errorf("list = %+v, want alice's single request", list)
	}
}

func TestListPolicy(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	if _, err := f.uc.List(ctx, f.admin, entity.AppointmentRequestFilter{}); !errors.Is(err, ErrMissingOwnerFilter) {
		t.Errorf("empty filter: error = %v, want ErrMissingOwnerFilter", err)
	}
	if _, err := f.uc.List(ctx, f.doctor2, entity.AppointmentRequestFilter{PsychiatristID: &f.p1.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign psychiatrist: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.List(ctx, f.stranger, entity.AppointmentRequestFilter{PatientEmail: "alice@example.com"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign email: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.List(ctx, f.alice, entity.AppointmentRequestFilter{PsychiatristID: &f.p1.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient by psychiatrist: error = %v, want ErrForbidden", err)
	}
	list, err := f.uc.List(ctx, f.admin, entity.AppointmentRequestFilter{PsychiatristID: &f.p2.ID})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %v, want empty non-nil slice", list)
	}
}

func TestGetPolicy(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))
	ctx := context.Background()

	for name, session := range map[string]*entity.Session{"admin": f.admin, "owner": f.doctor1, "requester": f.alice} {
		if _, err := f.uc.Get(ctx, session, created.ID); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
	if _, err := f.uc.Get(ctx, f.doctor2, created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other psychiatrist: error = %v, want ErrForbidden", err)
	}
	if _, err := f.uc.Get(ctx, f.admin, uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("unknown id: error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	f := newAppointmentFixture(t)
	created := f.create(t, f.scenarioA(f.p1.ID))
	ctx := context.Background()

	if err := f.uc.Delete(ctx, f.stranger, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: error = %v, want ErrForbidden", err)
	}
	if err := f.uc.Delete(ctx, f.alice, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.uc.Get(ctx, f.admin, created.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("after delete: error = %v, want ErrAppointmentNotFound", err)
	}
	if err := f.uc.Delete(ctx, f.admin, created.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("second delete: error = %v, want ErrAppointmentNotFound", err)
	}
}

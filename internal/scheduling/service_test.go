package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"clinic-booking/internal/configs"
	"clinic-booking/internal/mock"
	"clinic-booking/internal/redislock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var (
	testDoctorUUID  = uuid.MustParse("610e8e7a-94cf-4b88-9058-7f371e4d5a2e")
	testPatientUUID = uuid.MustParse("9f1a2ac5-1a1c-4f7b-92c3-26dcfca26cf3")
)

func newTestService(t *testing.T, dbConn mock.Connection, redisMock mock.Redis) *defaultService {
	t.Helper()
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, config.Location())
	return &defaultService{
		repository: newRepository(dbConn),
		locker:     redislock.NewDoctorLocker(redisMock.Client, redislock.DefaultLockTTL),
		config:     config,
		now:        func() time.Time { return fixedNow },
	}
}

func doctorColumns() []string {
	return []string{"id", "uuid", "name", "surname", "specialty", "license_number", "work_start", "work_end", "days_off"}
}

func doctorRows() *sqlmock.Rows {
	return sqlmock.NewRows(doctorColumns()).AddRow(1, testDoctorUUID, "Gregory", "House", "Diagnostics", "LIC-100001", "09:00", "17:00", "{Sunday}")
}

func unconfiguredDoctorRows() *sqlmock.Rows {
	return sqlmock.NewRows(doctorColumns()).AddRow(1, testDoctorUUID, "Gregory", "House", "Diagnostics", "LIC-100001", nil, nil, "{}")
}

func patientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "uuid", "name", "surname", "email", "telephone"}).
		AddRow(2, testPatientUUID, "John", "Doe", "john.doe@clinic.test", "+52 555 000 0000")
}

func appointmentColumns() []string {
	return []string{"id", "uuid", "doctor_id", "patient_id", "date", "status", "reason", "notes"}
}

func withFindDoctorResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindPatientResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findPatientByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindAppointmentResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findAppointmentByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withConflictCount(total int64) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countConflictsQuery)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))
	}
}

func withConflictCountArgs(doctorID int64, from time.Time, to time.Time) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countConflictsQuery)).
			WithArgs(doctorID, from, to).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	}
}

func withDailyCount(total int64) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countPatientDailyQuery)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))
	}
}

func withInsertAppointmentTx() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectBegin()
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(insertAppointmentQuery)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(appendDoctorReferenceQuery)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(appendPatientReferenceQuery)).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbConn.SQLMock.ExpectCommit()
	}
}

func withFindDoctorError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)
	}
}

func bookingRequest(date string, clock string) AppointmentRequest {
	return AppointmentRequest{
		Doctor:  testDoctorUUID.String(),
		Patient: testPatientUUID.String(),
		Date:    date,
		Time:    clock,
		Reason:  "checkup",
	}
}

func TestCreateAppointment(t *testing.T) {
	type args struct {
		dbMockOptions []mock.DBResultOption
		request       AppointmentRequest
		lockHeld      bool
	}
	tests := []struct {
		name      string
		args      args
		wantErr   error
		wantValid bool
	}{
		{
			name: "should book an aligned slot inside the working hours",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
					withConflictCount(0),
					withDailyCount(0),
					withInsertAppointmentTx(),
				},
				// 2025-06-02 is a Monday.
				request: bookingRequest("2025-06-02", "09:00"),
			},
		},
		{
			name: "should book a slot exactly at closing time",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
					withConflictCount(0),
					withDailyCount(0),
					withInsertAppointmentTx(),
				},
				request: bookingRequest("2025-06-02", "17:00"),
			},
		},
		{
			name: "should book a slot within the default window for an unconfigured doctor",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(unconfiguredDoctorRows()),
					withFindPatientResult(patientRows()),
					withConflictCount(0),
					withDailyCount(0),
					withInsertAppointmentTx(),
				},
				request: bookingRequest("2025-06-02", "09:30"),
			},
		},
		{
			name: "should not book a misaligned slot",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
				},
				request: bookingRequest("2025-06-02", "09:15"),
			},
			wantErr: ErrInvalidSlotAlignment,
		},
		{
			name: "should not book a slot after the closing time",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
				},
				request: bookingRequest("2025-06-02", "17:30"),
			},
			wantErr: ErrOutsideWorkingHours,
		},
		{
			name: "should not book a slot on the doctor's day off",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
				},
				// 2025-06-08 is a Sunday.
				request: bookingRequest("2025-06-08", "10:00"),
			},
			wantErr: ErrOutsideWorkingHours,
		},
		{
			name: "should not book a slot in the past",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
				},
				request: bookingRequest("2025-05-01", "10:00"),
			},
			wantErr: ErrInvalidDateTime,
		},
		{
			name: "should not book a slot that conflicts with an existing booking",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
					withConflictCount(1),
				},
				request: bookingRequest("2025-06-02", "10:00"),
			},
			wantErr: ErrSlotUnavailable,
		},
		{
			name: "should not book a third appointment on the same day",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
					withConflictCount(0),
					withDailyCount(2),
				},
				request: bookingRequest("2025-06-02", "10:00"),
			},
			wantErr: ErrDailyLimitExceeded,
		},
		{
			name: "should not book a slot for an unknown doctor",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(sqlmock.NewRows(doctorColumns())),
				},
				request: bookingRequest("2025-06-02", "10:00"),
			},
			wantErr: ErrDoctorNotFound,
		},
		{
			name: "should not book a slot while another booking holds the doctor lock",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorResult(doctorRows()),
					withFindPatientResult(patientRows()),
				},
				request:  bookingRequest("2025-06-02", "10:00"),
				lockHeld: true,
			},
			wantErr: ErrSlotBeingBooked,
		},
		{
			name: "should not book a slot when the request has no reason",
			args: args{
				request: AppointmentRequest{
					Doctor:  testDoctorUUID.String(),
					Patient: testPatientUUID.String(),
					Date:    "2025-06-02",
					Time:    "10:00",
				},
			},
			wantValid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbConn := mock.MustCreateConnectionMock()
			defer dbConn.Close()
			redisMock := mock.MustCreateRedisMock()
			defer redisMock.Close()

			service := newTestService(t, dbConn, redisMock)
			mock.MockDBResults(dbConn, tt.args.dbMockOptions...)

			if tt.args.lockHeld {
				if err := redisMock.Server.Set(fmt.Sprintf("lock:doctor:%s", testDoctorUUID), "held"); err != nil {
					t.Fatal(err)
				}
			}

			appointment, err := service.CreateAppointment(context.TODO(), tt.args.request)

			if tt.wantValid {
				if err == nil {
					t.Fatal("CreateAppointment() should have failed the request validation")
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateAppointment() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAppointment() unexpected error = %v", err)
			}
			if appointment.Status != StatusScheduled {
				t.Errorf("new appointment status = %s, want %s", appointment.Status, StatusScheduled)
			}
			if appointment.ID == 0 {
				t.Error("new appointment should carry the generated ID")
			}
			if appointment.UUID == (uuid.UUID{}) {
				t.Error("new appointment should carry a generated UUID")
			}
		})
	}
}

// The conflict window is exclusive on both sides, so a booking exactly one
// slot away never counts as a conflict.
func TestCreateAppointmentConflictWindow(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	instant := time.Date(2025, 6, 2, 9, 30, 0, 0, service.config.Location())
	mock.MockDBResults(dbConn,
		withFindDoctorResult(doctorRows()),
		withFindPatientResult(patientRows()),
		withConflictCountArgs(1, instant.Add(-conflictWindow), instant.Add(conflictWindow)),
		withDailyCount(0),
		withInsertAppointmentTx(),
	)

	if _, err := service.CreateAppointment(context.TODO(), bookingRequest("2025-06-02", "09:30")); err != nil {
		t.Fatalf("CreateAppointment() unexpected error = %v", err)
	}
	if err := dbConn.SQLMock.ExpectationsWereMet(); err != nil {
		t.Errorf("conflict query expectations were not met: %v", err)
	}
}

func TestCreateAppointmentReleasesLock(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	mock.MockDBResults(dbConn,
		withFindDoctorResult(doctorRows()),
		withFindPatientResult(patientRows()),
		withConflictCount(1),
	)

	_, err := service.CreateAppointment(context.TODO(), bookingRequest("2025-06-02", "10:00"))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("CreateAppointment() error = %v, want %v", err, ErrSlotUnavailable)
	}
	if redisMock.Server.Exists(fmt.Sprintf("lock:doctor:%s", testDoctorUUID)) {
		t.Error("the doctor lock should be released after a rejected booking")
	}
}

func TestGetAvailableSlots(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	location := service.config.Location()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, location)
	booked := sqlmock.NewRows(appointmentColumns()).
		AddRow(10, uuid.New(), 1, 2, time.Date(2025, 6, 2, 9, 0, 0, 0, location), StatusScheduled, "checkup", nil)
	mock.MockDBResults(dbConn,
		withFindDoctorResult(doctorRows()),
		func(conn mock.Connection) {
			conn.SQLMock.ExpectQuery(regexp.QuoteMeta(listBookedAppointmentsQuery)).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnRows(booked)
		},
	)

	slots, err := service.GetAvailableSlots(context.TODO(), testDoctorUUID, day)
	if err != nil {
		t.Fatalf("GetAvailableSlots() unexpected error = %v", err)
	}
	if containsInstant(slots, time.Date(2025, 6, 2, 9, 0, 0, 0, location)) {
		t.Error("the booked slot should not be available")
	}
	if !containsInstant(slots, time.Date(2025, 6, 2, 9, 30, 0, 0, location)) {
		t.Error("the slot right after the booking should be available")
	}
	if !containsInstant(slots, time.Date(2025, 6, 2, 17, 0, 0, 0, location)) {
		t.Error("the closing time slot should be available")
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	appointmentUUID := uuid.New()
	scheduledAppointment := func() *sqlmock.Rows {
		return sqlmock.NewRows(appointmentColumns()).
			AddRow(10, appointmentUUID, 1, 2, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), StatusScheduled, "checkup", nil)
	}
	completedAppointment := func() *sqlmock.Rows {
		return sqlmock.NewRows(appointmentColumns()).
			AddRow(10, appointmentUUID, 1, 2, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), StatusCompleted, "checkup", nil)
	}
	withStatusUpdateResult := func(affected int64) mock.DBResultOption {
		return func(dbConn mock.Connection) {
			dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(updateAppointmentStatusQuery)).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, affected))
		}
	}

	type args struct {
		dbMockOptions []mock.DBResultOption
		status        Status
	}
	tests := []struct {
		name       string
		args       args
		wantErr    error
		wantStatus Status
	}{
		{
			name: "should complete a scheduled appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(scheduledAppointment()), withStatusUpdateResult(1)},
				status:        StatusCompleted,
			},
			wantStatus: StatusCompleted,
		},
		{
			name: "should cancel a scheduled appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(scheduledAppointment()), withStatusUpdateResult(1)},
				status:        StatusCancelled,
			},
			wantStatus: StatusCancelled,
		},
		{
			// The appointment reads as scheduled but the guarded update matches
			// no row, as a concurrent transition already moved it to a terminal
			// state.
			name: "should not overwrite a concurrent transition",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(scheduledAppointment()), withStatusUpdateResult(0)},
				status:        StatusCompleted,
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not reopen a completed appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(completedAppointment())},
				status:        StatusScheduled,
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not cancel a completed appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(completedAppointment())},
				status:        StatusCancelled,
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not update an unknown appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{withFindAppointmentResult(sqlmock.NewRows(appointmentColumns()))},
				status:        StatusCompleted,
			},
			wantErr: ErrAppointmentNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbConn := mock.MustCreateConnectionMock()
			defer dbConn.Close()
			redisMock := mock.MustCreateRedisMock()
			defer redisMock.Close()

			service := newTestService(t, dbConn, redisMock)
			mock.MockDBResults(dbConn, tt.args.dbMockOptions...)

			appointment, err := service.UpdateAppointmentStatus(context.TODO(), appointmentUUID, tt.args.status)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateAppointmentStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateAppointmentStatus() unexpected error = %v", err)
			}
			if appointment.Status != tt.wantStatus {
				t.Errorf("appointment status = %s, want %s", appointment.Status, tt.wantStatus)
			}
		})
	}
}

func TestUpdateAppointmentStatusRejectsUnknownState(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	if _, err := service.UpdateAppointmentStatus(context.TODO(), uuid.New(), Status("pending")); err == nil {
		t.Fatal("UpdateAppointmentStatus() should reject an unknown state")
	}
}

func TestCancelAppointment(t *testing.T) {
	appointmentUUID := uuid.New()
	appointmentAt := func(date time.Time, status Status) *sqlmock.Rows {
		return sqlmock.NewRows(appointmentColumns()).
			AddRow(10, appointmentUUID, 1, 2, date, status, "checkup", nil)
	}
	withCancelResult := func(affected int64) mock.DBResultOption {
		return func(dbConn mock.Connection) {
			dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(cancelAppointmentQuery)).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, affected))
		}
	}

	// The service clock is pinned to 2025-06-01 12:00 in the clinic timezone.
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, config.Location())

	type args struct {
		dbMockOptions []mock.DBResultOption
		reason        string
	}
	tests := []struct {
		name    string
		args    args
		wantErr error
	}{
		{
			name: "should cancel an appointment with more than a day of notice",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(25*time.Hour), StatusScheduled)),
					withCancelResult(1),
				},
				reason: "conflicting engagement",
			},
		},
		{
			name: "should cancel an appointment with exactly a day of notice",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(24*time.Hour), StatusScheduled)),
					withCancelResult(1),
				},
				reason: "conflicting engagement",
			},
		},
		{
			name: "should not cancel an appointment with less than a day of notice",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(23*time.Hour), StatusScheduled)),
				},
				reason: "conflicting engagement",
			},
			wantErr: ErrCancellationWindowExpired,
		},
		{
			name: "should not cancel an appointment completed by a concurrent update",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(48*time.Hour), StatusScheduled)),
					withCancelResult(0),
				},
				reason: "conflicting engagement",
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not cancel an already cancelled appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(48*time.Hour), StatusCancelled)),
				},
				reason: "conflicting engagement",
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not cancel a completed appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(appointmentAt(now.Add(48*time.Hour), StatusCompleted)),
				},
				reason: "conflicting engagement",
			},
			wantErr: ErrInvalidStatusTransition,
		},
		{
			name: "should not cancel an unknown appointment",
			args: args{
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentResult(sqlmock.NewRows(appointmentColumns())),
				},
				reason: "conflicting engagement",
			},
			wantErr: ErrAppointmentNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbConn := mock.MustCreateConnectionMock()
			defer dbConn.Close()
			redisMock := mock.MustCreateRedisMock()
			defer redisMock.Close()

			service := newTestService(t, dbConn, redisMock)
			mock.MockDBResults(dbConn, tt.args.dbMockOptions...)

			appointment, err := service.CancelAppointment(context.TODO(), appointmentUUID, tt.args.reason)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CancelAppointment() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CancelAppointment() unexpected error = %v", err)
			}
			if appointment.Status != StatusCancelled {
				t.Errorf("appointment status = %s, want %s", appointment.Status, StatusCancelled)
			}
			if appointment.Notes == nil || *appointment.Notes != tt.args.reason {
				t.Error("the cancellation reason should be recorded in the appointment notes")
			}
		})
	}
}

func TestCancelAppointmentRequiresReason(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	if _, err := service.CancelAppointment(context.TODO(), uuid.New(), ""); err == nil {
		t.Fatal("CancelAppointment() should require a reason")
	}
}

func TestListPatientAppointments(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	rows := sqlmock.NewRows(appointmentColumns()).
		AddRow(10, uuid.New(), 1, 2, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), StatusScheduled, "checkup", nil).
		AddRow(11, uuid.New(), 1, 2, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), StatusCancelled, "follow up", "patient request")
	mock.MockDBResults(dbConn,
		withFindPatientResult(patientRows()),
		func(conn mock.Connection) {
			conn.SQLMock.ExpectQuery(regexp.QuoteMeta(listPatientAppointmentsQuery)).
				WithArgs(sqlmock.AnyArg()).
				WillReturnRows(rows)
		},
	)

	appointments, err := service.ListPatientAppointments(context.TODO(), testPatientUUID)
	if err != nil {
		t.Fatalf("ListPatientAppointments() unexpected error = %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("ListPatientAppointments() returned %d appointments, want 2", len(appointments))
	}
}

func TestListDoctorAppointments(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	status := StatusScheduled
	rows := sqlmock.NewRows(appointmentColumns()).
		AddRow(10, uuid.New(), 1, 2, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), StatusScheduled, "checkup", nil)
	mock.MockDBResults(dbConn,
		withFindDoctorResult(doctorRows()),
		func(conn mock.Connection) {
			conn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDoctorAppointmentsQuery)).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnRows(rows)
		},
	)

	appointments, err := service.ListDoctorAppointments(context.TODO(), testDoctorUUID, ListFilter{Date: &date, Status: &status})
	if err != nil {
		t.Fatalf("ListDoctorAppointments() unexpected error = %v", err)
	}
	if len(appointments) != 1 {
		t.Fatalf("ListDoctorAppointments() returned %d appointments, want 1", len(appointments))
	}
}

func TestListDoctorAppointmentsFailsOnDatabaseError(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	redisMock := mock.MustCreateRedisMock()
	defer redisMock.Close()

	service := newTestService(t, dbConn, redisMock)
	mock.MockDBResults(dbConn, withFindDoctorError())

	if _, err := service.ListDoctorAppointments(context.TODO(), testDoctorUUID, ListFilter{}); err == nil {
		t.Fatal("ListDoctorAppointments() should surface the database error")
	}
}

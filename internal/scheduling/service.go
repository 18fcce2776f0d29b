package scheduling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/redislock"

	"github.com/google/uuid"
)

const (
	// DailyAppointmentCap is the maximum number of scheduled appointments a
	// patient may hold on one calendar day.
	DailyAppointmentCap = 2

	// CancellationLeadTime is the minimum notice required to cancel an
	// appointment.
	CancellationLeadTime = 24 * time.Hour
)

// Reader determines the methods available to query the appointment book.
type Reader interface {

	// GetAvailableSlots returns the doctor's free appointment instants for the
	// given day, ascending.
	GetAvailableSlots(ctx context.Context, doctorUUID uuid.UUID, day time.Time) ([]time.Time, error)

	// ListPatientAppointments returns the patient's appointments, ascending by date.
	ListPatientAppointments(ctx context.Context, patientUUID uuid.UUID) ([]*Appointment, error)

	// ListDoctorAppointments returns the doctor's appointments, ascending by date,
	// optionally restricted by the given filter.
	ListDoctorAppointments(ctx context.Context, doctorUUID uuid.UUID, filter ListFilter) ([]*Appointment, error)
}

// Writer determines the methods available to change the appointment book.
type Writer interface {

	// CreateAppointment books a new appointment after validating the requested
	// instant against the doctor's working hours, the slot grid, the existing
	// bookings and the patient's daily cap.
	CreateAppointment(ctx context.Context, request AppointmentRequest) (*Appointment, error)

	// UpdateAppointmentStatus changes the appointment status, enforcing the
	// lifecycle transition table.
	UpdateAppointmentStatus(ctx context.Context, appointmentUUID uuid.UUID, status Status) (*Appointment, error)

	// CancelAppointment cancels a scheduled appointment, recording the reason,
	// as long as the cancellation notice is respected.
	CancelAppointment(ctx context.Context, appointmentUUID uuid.UUID, reason string) (*Appointment, error)
}

// Service determines the methods used to manage the clinic appointment book.
type Service interface {
	Reader
	Writer
}

type defaultService struct {
	repository Repository
	locker     redislock.Locker
	config     configs.Config
	now        func() time.Time
}

// NewService creates a new scheduling service.
func NewService(config configs.Config, dbConn database.Connection, locker redislock.Locker) Service {
	return &defaultService{
		config:     config,
		repository: newRepository(dbConn),
		locker:     locker,
		now:        time.Now,
	}
}

func (d defaultService) CreateAppointment(ctx context.Context, request AppointmentRequest) (*Appointment, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	doctorUUID, err := uuid.Parse(request.Doctor)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidReference), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	patientUUID, err := uuid.Parse(request.Patient)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidReference), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	doctor, err := d.getDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	patient, err := d.getPatient(ctx, patientUUID)
	if err != nil {
		return nil, err
	}
	instant, err := d.parseInstant(request.Date, request.Time)
	if err != nil || instant.Before(d.now()) {
		return nil, d.rejectBooking("invalid_datetime", ErrInvalidDateTime, http.StatusBadRequest)
	}
	if !IsSlotAligned(instant) {
		return nil, d.rejectBooking("slot_misaligned", ErrInvalidSlotAlignment, http.StatusBadRequest)
	}
	if !IsWithinWorkingHours(instant, doctor.WorkingHours()) {
		return nil, d.rejectBooking("outside_working_hours", ErrOutsideWorkingHours, http.StatusBadRequest)
	}

	// The conflict and daily cap checks are check-then-act against the store, so
	// creation is serialized per doctor to keep two concurrent requests from
	// both passing them.
	var created *Appointment
	err = d.locker.WithDoctorLock(ctx, doctor.UUID, func(lockCtx context.Context) error {
		conflict, err := d.repository.HasConflict(lockCtx, doctor.ID, instant)
		if err != nil {
			return fmt.Errorf("an unexpected error occurred: %w", err)
		}
		if conflict {
			return d.rejectBooking("slot_unavailable", ErrSlotUnavailable, http.StatusConflict)
		}
		dayStart, dayEnd := d.dayBounds(instant)
		total, err := d.repository.CountPatientAppointmentsBetween(lockCtx, patient.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("an unexpected error occurred: %w", err)
		}
		if total >= DailyAppointmentCap {
			return d.rejectBooking("daily_limit", ErrDailyLimitExceeded, http.StatusConflict)
		}
		appointment := &Appointment{
			UUID:      uuid.New(),
			DoctorID:  doctor.ID,
			Doctor:    doctor,
			PatientID: patient.ID,
			Patient:   patient,
			Date:      instant,
			Status:    StatusScheduled,
			Reason:    request.Reason,
		}
		if request.Notes != "" {
			notes := request.Notes
			appointment.Notes = &notes
		}
		if err = d.repository.InsertAppointment(lockCtx, appointment); err != nil {
			return fmt.Errorf("an unexpected error occurred: %w", err)
		}
		created = appointment
		return nil
	})
	if err != nil {
		if errors.Is(err, redislock.ErrLockNotAcquired) {
			return nil, d.rejectBooking("lock_contention", ErrSlotBeingBooked, http.StatusConflict)
		}
		return nil, err
	}
	metrics.IncAppointmentCreated()
	return created, nil
}

func (d defaultService) GetAvailableSlots(ctx context.Context, doctorUUID uuid.UUID, day time.Time) ([]time.Time, error) {
	doctor, err := d.getDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, d.config.Location())
	booked, err := d.repository.ListBookedAppointments(ctx, doctor.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	bookedInstants := make([]time.Time, 0, len(booked))
	for _, appointment := range booked {
		bookedInstants = append(bookedInstants, appointment.Date.In(d.config.Location()))
	}
	return GenerateAvailableSlots(dayStart, doctor.WorkingHours(), bookedInstants, d.now()), nil
}

func (d defaultService) UpdateAppointmentStatus(ctx context.Context, appointmentUUID uuid.UUID, status Status) (*Appointment, error) {
	if !status.IsValid() {
		return nil, apierrors.NewValidationError("status", "invalid")
	}
	appointment, err := d.getAppointment(ctx, appointmentUUID)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(status) {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidStatusTransition), apierrors.WithHTTPStatusCode(http.StatusConflict))
	}
	if err = d.repository.UpdateAppointmentStatus(ctx, appointment.ID, status); err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidStatusTransition), apierrors.WithHTTPStatusCode(http.StatusConflict))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = status
	return appointment, nil
}

func (d defaultService) CancelAppointment(ctx context.Context, appointmentUUID uuid.UUID, reason string) (*Appointment, error) {
	if reason == "" {
		return nil, apierrors.NewValidationError("reason", "required")
	}
	appointment, err := d.getAppointment(ctx, appointmentUUID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != StatusScheduled {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidStatusTransition), apierrors.WithHTTPStatusCode(http.StatusConflict))
	}
	if appointment.Date.Sub(d.now()) < CancellationLeadTime {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrCancellationWindowExpired), apierrors.WithHTTPStatusCode(http.StatusConflict))
	}
	if err = d.repository.CancelAppointment(ctx, appointment.ID, reason); err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidStatusTransition), apierrors.WithHTTPStatusCode(http.StatusConflict))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = StatusCancelled
	appointment.Notes = &reason
	return appointment, nil
}

func (d defaultService) ListPatientAppointments(ctx context.Context, patientUUID uuid.UUID) ([]*Appointment, error) {
	patient, err := d.getPatient(ctx, patientUUID)
	if err != nil {
		return nil, err
	}
	appointments, err := d.repository.ListPatientAppointments(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return appointments, nil
}

func (d defaultService) ListDoctorAppointments(ctx context.Context, doctorUUID uuid.UUID, filter ListFilter) ([]*Appointment, error) {
	doctor, err := d.getDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, d.config.Location())
		filter.Date = &dayStart
	}
	appointments, err := d.repository.ListDoctorAppointments(ctx, doctor.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return appointments, nil
}

// getDoctor resolves the doctor behind the given reference.
func (d defaultService) getDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error) {
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return doctor, nil
}

// getPatient resolves the patient behind the given reference.
func (d defaultService) getPatient(ctx context.Context, patientUUID uuid.UUID) (*Patient, error) {
	patient, err := d.repository.FindPatientByUUID(ctx, patientUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrPatientNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return patient, nil
}

// getAppointment resolves the appointment behind the given reference.
func (d defaultService) getAppointment(ctx context.Context, appointmentUUID uuid.UUID) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return appointment, nil
}

// parseInstant combines the given date and time into an instant in the clinic
// timezone.
func (d defaultService) parseInstant(date string, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s", date, clock), d.config.Location())
}

// dayBounds returns the calendar day interval containing the given instant.
func (d defaultService) dayBounds(instant time.Time) (time.Time, time.Time) {
	local := instant.In(d.config.Location())
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.config.Location())
	return dayStart, dayStart.AddDate(0, 0, 1)
}

// rejectBooking counts the rejection for metrics gathering and returns the API error.
func (d defaultService) rejectBooking(reason string, detail Error, statusCode int) error {
	metrics.IncAppointmentRejected(reason)
	return apierrors.NewAPIError(apierrors.WithDetail(detail), apierrors.WithHTTPStatusCode(statusCode))
}

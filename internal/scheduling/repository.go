package scheduling

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clinic-booking/internal/database"

	"github.com/google/uuid"
)

const (
	findDoctorByUUIDQuery        = "SELECT id, uuid, name, surname, specialty, license_number, work_start, work_end, days_off FROM tb_doctor WHERE uuid = $1"
	findPatientByUUIDQuery       = "SELECT id, uuid, name, surname, email, telephone FROM tb_patient WHERE uuid = $1"
	findAppointmentByUUIDQuery   = "SELECT id, uuid, doctor_id, patient_id, date, status, reason, notes FROM tb_appointment WHERE uuid = $1"
	countConflictsQuery          = "SELECT count(id) FROM tb_appointment WHERE doctor_id = $1 AND status = 'scheduled' AND date > $2 AND date < $3"
	countPatientDailyQuery       = "SELECT count(id) FROM tb_appointment WHERE patient_id = $1 AND status = 'scheduled' AND date >= $2 AND date < $3"
	listBookedAppointmentsQuery  = "SELECT id, uuid, doctor_id, patient_id, date, status, reason, notes FROM tb_appointment WHERE doctor_id = $1 AND status = 'scheduled' AND date >= $2 AND date < $3 ORDER BY date"
	listPatientAppointmentsQuery = "SELECT id, uuid, doctor_id, patient_id, date, status, reason, notes FROM tb_appointment WHERE patient_id = $1 ORDER BY date"
	listDoctorAppointmentsQuery  = "SELECT id, uuid, doctor_id, patient_id, date, status, reason, notes FROM tb_appointment WHERE doctor_id = $1"
	insertAppointmentQuery       = "INSERT INTO tb_appointment (uuid, doctor_id, patient_id, date, status, reason, notes) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	appendDoctorReferenceQuery   = "UPDATE tb_doctor SET appointments = array_append(appointments, $2) WHERE id = $1"
	appendPatientReferenceQuery  = "UPDATE tb_patient SET appointments = array_append(appointments, $2) WHERE id = $1"
	updateAppointmentStatusQuery = "UPDATE tb_appointment SET status = $2 WHERE id = $1 AND status = 'scheduled'"
	cancelAppointmentQuery       = "UPDATE tb_appointment SET status = $2, notes = $3 WHERE id = $1 AND status = 'scheduled'"
)

// conflictWindow determines how close to an existing scheduled appointment a
// candidate instant may be. The boundary is strict on both sides, so two
// appointments exactly one slot duration apart do not conflict.
const conflictWindow = SlotDuration

// Repository provides access to scheduling data.
type Repository interface {

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// FindPatientByUUID finds a patient by its UUID.
	FindPatientByUUID(ctx context.Context, uuid uuid.UUID) (*Patient, error)

	// FindAppointmentByUUID finds an appointment by its UUID.
	FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error)

	// HasConflict checks if another scheduled appointment for the doctor lies
	// closer than the conflict window to the given instant.
	HasConflict(ctx context.Context, doctorID int64, instant time.Time) (bool, error)

	// CountPatientAppointmentsBetween counts the patient's scheduled appointments
	// within the given interval.
	CountPatientAppointmentsBetween(ctx context.Context, patientID int64, from time.Time, to time.Time) (int64, error)

	// ListBookedAppointments lists the doctor's scheduled appointments within the
	// given interval, ascending by date.
	ListBookedAppointments(ctx context.Context, doctorID int64, from time.Time, to time.Time) ([]*Appointment, error)

	// ListPatientAppointments lists all the patient's appointments, ascending by date.
	ListPatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error)

	// ListDoctorAppointments lists the doctor's appointments, ascending by date,
	// optionally restricted by the given filter.
	ListDoctorAppointments(ctx context.Context, doctorID int64, filter ListFilter) ([]*Appointment, error)

	// InsertAppointment persists a new appointment and appends its reference to
	// the doctor and patient records, all within a single transaction.
	InsertAppointment(ctx context.Context, appointment *Appointment) error

	// UpdateAppointmentStatus persists a new status for the appointment. The
	// update only matches the row while it is still scheduled, so a transition
	// that lost the race to a concurrent one fails with ErrInvalidStatusTransition
	// instead of overwriting a terminal state.
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status Status) error

	// CancelAppointment persists the cancelled status and the cancellation
	// reason, under the same still-scheduled guard as UpdateAppointmentStatus.
	CancelAppointment(ctx context.Context, appointmentID int64, notes string) error
}

type defaultRepository struct {
	dbConn database.Connection
}

func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findDoctorByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindPatientByUUID(ctx context.Context, uuid uuid.UUID) (*Patient, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findPatientByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	patient := new(Patient)
	for rows.Next() {
		if err = database.TransformRow(rows, patient); err != nil {
			return nil, err
		}
		if patient.ID > 0 {
			return patient, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findAppointmentByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointment := new(Appointment)
	for rows.Next() {
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		if appointment.ID > 0 {
			return appointment, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) HasConflict(ctx context.Context, doctorID int64, instant time.Time) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	var total int64
	err := d.dbConn.DB().QueryRowContext(ctx, countConflictsQuery, doctorID, instant.Add(-conflictWindow), instant.Add(conflictWindow)).Scan(&total)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (d defaultRepository) CountPatientAppointmentsBetween(ctx context.Context, patientID int64, from time.Time, to time.Time) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	var total int64
	err := d.dbConn.DB().QueryRowContext(ctx, countPatientDailyQuery, patientID, from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (d defaultRepository) ListBookedAppointments(ctx context.Context, doctorID int64, from time.Time, to time.Time) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listBookedAppointmentsQuery, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	return collectAppointments(rows)
}

func (d defaultRepository) ListPatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listPatientAppointmentsQuery, patientID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	return collectAppointments(rows)
}

func (d defaultRepository) ListDoctorAppointments(ctx context.Context, doctorID int64, filter ListFilter) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	query := listDoctorAppointmentsQuery
	params := []interface{}{doctorID}
	if filter.Date != nil {
		query += fmt.Sprintf(" AND date >= $%d AND date < $%d", len(params)+1, len(params)+2)
		params = append(params, *filter.Date, filter.Date.AddDate(0, 0, 1))
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(params)+1)
		params = append(params, *filter.Status)
	}
	query += " ORDER BY date"
	rows, err := d.dbConn.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	return collectAppointments(rows)
}

func (d defaultRepository) InsertAppointment(ctx context.Context, appointment *Appointment) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.WithinTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertAppointmentQuery,
			appointment.UUID,
			appointment.DoctorID,
			appointment.PatientID,
			appointment.Date,
			appointment.Status,
			appointment.Reason,
			appointment.Notes,
		).Scan(&appointment.ID)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, appendDoctorReferenceQuery, appointment.DoctorID, appointment.UUID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, appendPatientReferenceQuery, appointment.PatientID, appointment.UUID); err != nil {
			return err
		}
		return nil
	})
}

func (d defaultRepository) UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status Status) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateAppointmentStatusQuery, appointmentID, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func (d defaultRepository) CancelAppointment(ctx context.Context, appointmentID int64, notes string) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, cancelAppointmentQuery, appointmentID, StatusCancelled, notes)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

// collectAppointments transforms the given rows into appointments.
func collectAppointments(rows *sql.Rows) ([]*Appointment, error) {
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err := database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

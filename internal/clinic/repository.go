package clinic

import (
	"context"
	"database/sql"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"

	"github.com/google/uuid"
)

const (
	countUsersByEmailQuery = "SELECT count(id) FROM tb_user WHERE email = $1"
	insertUserQuery        = "INSERT INTO tb_user (uuid, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id"
	insertDoctorQuery      = "INSERT INTO tb_doctor (uuid, user_id, name, surname, email, telephone, specialty, license_number, work_start, work_end, days_off) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id"
	insertPatientQuery     = "INSERT INTO tb_patient (uuid, user_id, name, surname, email, telephone, blood_type, gender, birthday) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id"
	findDoctorByUUIDQuery  = "SELECT id, uuid, user_id, name, surname, email, telephone, specialty, license_number, work_start, work_end, days_off, appointments FROM tb_doctor WHERE uuid = $1"
	listDoctorsQuery       = "SELECT id, uuid, user_id, name, surname, email, telephone, specialty, license_number, work_start, work_end, days_off, appointments FROM tb_doctor ORDER BY surname, name"
	findPatientByUUIDQuery = "SELECT id, uuid, user_id, name, surname, email, telephone, blood_type, gender, birthday, appointments FROM tb_patient WHERE uuid = $1"
)

// Repository provides access to registration and profile data.
type Repository interface {

	// IsEmailRegistered checks if the given email is already taken by an account.
	IsEmailRegistered(ctx context.Context, email string) (bool, error)

	// InsertDoctor persists the account and the doctor profile within a single transaction.
	InsertDoctor(ctx context.Context, account auth.User, doctor *Doctor) error

	// InsertPatient persists the account and the patient profile within a single transaction.
	InsertPatient(ctx context.Context, account auth.User, patient *Patient) error

	// InsertAdministrator persists an administrator account.
	InsertAdministrator(ctx context.Context, account auth.User) error

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// ListDoctors lists all registered doctors.
	ListDoctors(ctx context.Context) ([]*Doctor, error)

	// FindPatientByUUID finds a patient by its UUID.
	FindPatientByUUID(ctx context.Context, uuid uuid.UUID) (*Patient, error)
}

type defaultRepository struct {
	dbConn database.Connection
}

func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) IsEmailRegistered(ctx context.Context, email string) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	var total int64
	if err := d.dbConn.DB().QueryRowContext(ctx, countUsersByEmailQuery, email).Scan(&total); err != nil {
		return false, err
	}
	return total > 0, nil
}

func (d defaultRepository) InsertDoctor(ctx context.Context, account auth.User, doctor *Doctor) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.WithinTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertUserQuery, account.UUID, account.Email, account.Password, account.Role).Scan(&doctor.UserID)
		if err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, insertDoctorQuery,
			doctor.UUID,
			doctor.UserID,
			doctor.Name,
			doctor.Surname,
			doctor.Email,
			doctor.Telephone,
			doctor.Specialty,
			doctor.LicenseNumber,
			doctor.WorkStart,
			doctor.WorkEnd,
			doctor.DaysOff,
		).Scan(&doctor.ID)
	})
}

func (d defaultRepository) InsertPatient(ctx context.Context, account auth.User, patient *Patient) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.WithinTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertUserQuery, account.UUID, account.Email, account.Password, account.Role).Scan(&patient.UserID)
		if err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, insertPatientQuery,
			patient.UUID,
			patient.UserID,
			patient.Name,
			patient.Surname,
			patient.Email,
			patient.Telephone,
			patient.BloodType,
			patient.Gender,
			patient.Birthday,
		).Scan(&patient.ID)
	})
}

func (d defaultRepository) InsertAdministrator(ctx context.Context, account auth.User) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	var accountID int64
	return d.dbConn.DB().QueryRowContext(ctx, insertUserQuery, account.UUID, account.Email, account.Password, account.Role).Scan(&accountID)
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

func (d defaultRepository) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listDoctorsQuery)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctors := make([]*Doctor, 0)
	for rows.Next() {
		doctor := new(Doctor)
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
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

package clinic

import (
	"context"
	"net/http"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"

	"github.com/google/uuid"
)

// Reader defines the read operations over doctors and patients profiles.
type Reader interface {

	// GetDoctor gets a doctor by its UUID.
	GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error)

	// ListDoctors lists all registered doctors.
	ListDoctors(ctx context.Context) ([]*Doctor, error)

	// GetPatient gets a patient by its UUID.
	GetPatient(ctx context.Context, patientUUID uuid.UUID) (*Patient, error)
}

// Writer defines the registration operations.
type Writer interface {

	// RegisterDoctor registers a new doctor along with its account.
	RegisterDoctor(ctx context.Context, registration DoctorRegistration) (*Doctor, error)

	// RegisterPatient registers a new patient along with its account.
	RegisterPatient(ctx context.Context, registration PatientRegistration) (*Patient, error)

	// RegisterAdministrator registers a new administrator account.
	RegisterAdministrator(ctx context.Context, registration AdministratorRegistration) (*auth.User, error)
}

// Service defines the service that deals with registrations and profiles.
type Service interface {
	Reader
	Writer
}

type defaultService struct {
	repository Repository
}

// NewService creates a new registration and profile Service.
func NewService(dbConn database.Connection) Service {
	return &defaultService{repository: newRepository(dbConn)}
}

func (d defaultService) GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error) {
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(
			apierrors.WithDetail(ErrDoctorNotFound),
			apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	workingHours := doctor.effectiveWorkingHours()
	doctor.WorkingHours = &workingHours
	return doctor, nil
}

func (d defaultService) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	doctors, err := d.repository.ListDoctors(ctx)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	for _, doctor := range doctors {
		workingHours := doctor.effectiveWorkingHours()
		doctor.WorkingHours = &workingHours
	}
	return doctors, nil
}

func (d defaultService) GetPatient(ctx context.Context, patientUUID uuid.UUID) (*Patient, error) {
	patient, err := d.repository.FindPatientByUUID(ctx, patientUUID)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	if patient == nil {
		return nil, apierrors.NewAPIError(
			apierrors.WithDetail(ErrPatientNotFound),
			apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return patient, nil
}

func (d defaultService) RegisterDoctor(ctx context.Context, registration DoctorRegistration) (*Doctor, error) {
	if err := registration.Validate(); err != nil {
		return nil, err
	}
	account, err := d.createAccount(ctx, registration.Email, registration.Password, auth.DoctorRole)
	if err != nil {
		return nil, err
	}
	doctor := &Doctor{
		UUID:          uuid.New(),
		Name:          registration.Name,
		Surname:       registration.Surname,
		Email:         registration.Email,
		Telephone:     registration.Telephone,
		Specialty:     registration.Specialty,
		LicenseNumber: registration.LicenseNumber,
	}
	if registration.WorkingHours != nil {
		doctor.WorkStart = &registration.WorkingHours.Start
		doctor.WorkEnd = &registration.WorkingHours.End
		doctor.DaysOff = registration.WorkingHours.DaysOff
	}
	if err = d.repository.InsertDoctor(ctx, account, doctor); err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	workingHours := doctor.effectiveWorkingHours()
	doctor.WorkingHours = &workingHours
	return doctor, nil
}

func (d defaultService) RegisterPatient(ctx context.Context, registration PatientRegistration) (*Patient, error) {
	if err := registration.Validate(); err != nil {
		return nil, err
	}
	account, err := d.createAccount(ctx, registration.Email, registration.Password, auth.PatientRole)
	if err != nil {
		return nil, err
	}
	patient := &Patient{
		UUID:      uuid.New(),
		Name:      registration.Name,
		Surname:   registration.Surname,
		Email:     registration.Email,
		Telephone: registration.Telephone,
		BloodType: registration.BloodType,
		Gender:    registration.Gender,
		Birthday:  registration.Birthday,
	}
	if err = d.repository.InsertPatient(ctx, account, patient); err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	return patient, nil
}

func (d defaultService) RegisterAdministrator(ctx context.Context, registration AdministratorRegistration) (*auth.User, error) {
	if err := registration.Validate(); err != nil {
		return nil, err
	}
	account, err := d.createAccount(ctx, registration.Email, registration.Password, auth.AdminRole)
	if err != nil {
		return nil, err
	}
	if err = d.repository.InsertAdministrator(ctx, account); err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	account.Password = ""
	return &account, nil
}

// createAccount checks the email uniqueness and builds the account row with an
// already encrypted password.
func (d defaultService) createAccount(ctx context.Context, email string, password string, role auth.Role) (auth.User, error) {
	registered, err := d.repository.IsEmailRegistered(ctx, email)
	if err != nil {
		return auth.User{}, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	if registered {
		return auth.User{}, apierrors.NewAPIError(
			apierrors.WithDetail(ErrEmailAlreadyRegistered),
			apierrors.WithHTTPStatusCode(http.StatusConflict))
	}
	hashedPassword, err := auth.EncryptPassword(password)
	if err != nil {
		return auth.User{}, apierrors.NewAPIError(apierrors.WithDetail(err))
	}
	return auth.User{
		UUID:     uuid.New(),
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}, nil
}

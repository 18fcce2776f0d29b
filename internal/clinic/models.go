package clinic

import (
	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/scheduling"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Doctor struct {
	ID            int64                    `json:"-" dbfield:"id"`
	UserID        int64                    `json:"-" dbfield:"user_id"`
	UUID          uuid.UUID                `json:"uuid" dbfield:"uuid"`
	Name          string                   `json:"name" dbfield:"name"`
	Surname       string                   `json:"surname" dbfield:"surname"`
	Email         string                   `json:"email" dbfield:"email"`
	Telephone     string                   `json:"telephone" dbfield:"telephone"`
	Specialty     string                   `json:"specialty" dbfield:"specialty"`
	LicenseNumber string                   `json:"license_number" dbfield:"license_number"`
	WorkStart     *string                  `json:"-" dbfield:"work_start"`
	WorkEnd       *string                  `json:"-" dbfield:"work_end"`
	DaysOff       pq.StringArray           `json:"-" dbfield:"days_off"`
	WorkingHours  *scheduling.WorkingHours `json:"working_hours,omitempty"`
	Appointments  pq.StringArray           `json:"appointments" dbfield:"appointments"`
}

// effectiveWorkingHours resolves the doctor's working window, substituting the
// default one when the record has none.
func (d *Doctor) effectiveWorkingHours() scheduling.WorkingHours {
	if d.WorkStart == nil || d.WorkEnd == nil || *d.WorkStart == "" || *d.WorkEnd == "" {
		workingHours := scheduling.DefaultWorkingHours()
		workingHours.DaysOff = append(workingHours.DaysOff, d.DaysOff...)
		return workingHours
	}
	return scheduling.WorkingHours{Start: *d.WorkStart, End: *d.WorkEnd, DaysOff: d.DaysOff}
}

type Patient struct {
	ID           int64          `json:"-" dbfield:"id"`
	UserID       int64          `json:"-" dbfield:"user_id"`
	UUID         uuid.UUID      `json:"uuid" dbfield:"uuid"`
	Name         string         `json:"name" dbfield:"name"`
	Surname      string         `json:"surname" dbfield:"surname"`
	Email        string         `json:"email" dbfield:"email"`
	Telephone    string         `json:"telephone" dbfield:"telephone"`
	BloodType    string         `json:"blood_type" dbfield:"blood_type"`
	Gender       string         `json:"gender" dbfield:"gender"`
	Birthday     string         `json:"birthday" dbfield:"birthday"`
	Appointments pq.StringArray `json:"appointments" dbfield:"appointments"`
}

// DoctorRegistration carries the data needed to register a new doctor.
type DoctorRegistration struct {
	Name          string                   `json:"name"`
	Surname       string                   `json:"surname"`
	Email         string                   `json:"email"`
	Password      string                   `json:"password"`
	Telephone     string                   `json:"telephone"`
	Specialty     string                   `json:"specialty"`
	LicenseNumber string                   `json:"license_number"`
	WorkingHours  *scheduling.WorkingHours `json:"working_hours,omitempty"`
}

// Validate validates if the registration given is valid.
func (d DoctorRegistration) Validate() error {
	requiredFields := map[string]string{
		"name":           d.Name,
		"surname":        d.Surname,
		"email":          d.Email,
		"password":       d.Password,
		"telephone":      d.Telephone,
		"specialty":      d.Specialty,
		"license_number": d.LicenseNumber,
	}
	for field, value := range requiredFields {
		if value == "" {
			return apierrors.NewValidationError(field, "required")
		}
	}
	if d.WorkingHours != nil {
		return d.WorkingHours.Validate()
	}
	return nil
}

// PatientRegistration carries the data needed to register a new patient.
type PatientRegistration struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Telephone string `json:"telephone"`
	BloodType string `json:"blood_type"`
	Gender    string `json:"gender"`
	Birthday  string `json:"birthday"`
}

// Validate validates if the registration given is valid.
func (p PatientRegistration) Validate() error {
	requiredFields := map[string]string{
		"name":       p.Name,
		"surname":    p.Surname,
		"email":      p.Email,
		"password":   p.Password,
		"telephone":  p.Telephone,
		"blood_type": p.BloodType,
		"gender":     p.Gender,
		"birthday":   p.Birthday,
	}
	for field, value := range requiredFields {
		if value == "" {
			return apierrors.NewValidationError(field, "required")
		}
	}
	return nil
}

// AdministratorRegistration carries the data needed to register a new administrator.
type AdministratorRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates if the registration given is valid.
func (a AdministratorRegistration) Validate() error {
	if a.Email == "" {
		return apierrors.NewValidationError("email", "required")
	}
	if a.Password == "" {
		return apierrors.NewValidationError("password", "required")
	}
	return nil
}

package scheduling

import (
	"strings"
	"time"

	"clinic-booking/internal/apierrors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status represents the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validTransitions holds the allowed status changes. Completed and cancelled
// are terminal states.
var validTransitions = map[Status][]Status{
	StatusScheduled: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid checks if the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	_, known := validTransitions[s]
	return known
}

// CanTransitionTo checks if the status change to the given target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// WorkingHours represents the daily window during which a doctor accepts
// appointments, minus any full days off.
type WorkingHours struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	DaysOff []string `json:"days_off"`
}

const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "17:00"
)

// DefaultWorkingHours returns the working hours assumed for doctors that never
// configured a window.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: DefaultWorkStart, End: DefaultWorkEnd, DaysOff: []string{}}
}

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Validate validates if the working hours are valid.
func (w WorkingHours) Validate() error {
	if !IsValidClockTime(w.Start) {
		return apierrors.NewValidationError("working_hours.start", "invalid time reference - e.g. 09:00")
	}
	if !IsValidClockTime(w.End) {
		return apierrors.NewValidationError("working_hours.end", "invalid time reference - e.g. 17:00")
	}
	if clockToMinutes(w.End) < clockToMinutes(w.Start) {
		return apierrors.NewValidationError("working_hours.end", "must not be before start")
	}
	for _, dayOff := range w.DaysOff {
		if !isWeekdayName(dayOff) {
			return apierrors.NewValidationError("working_hours.days_off", "invalid weekday name - e.g. Sunday")
		}
	}
	return nil
}

func isWeekdayName(value string) bool {
	for _, name := range weekdayNames {
		if strings.EqualFold(name, value) {
			return true
		}
	}
	return false
}

type Doctor struct {
	ID            int64          `json:"-" dbfield:"id"`
	UUID          uuid.UUID      `json:"uuid" dbfield:"uuid"`
	Name          string         `json:"name" dbfield:"name"`
	Surname       string         `json:"surname" dbfield:"surname"`
	Specialty     string         `json:"specialty" dbfield:"specialty"`
	LicenseNumber string         `json:"license_number" dbfield:"license_number"`
	WorkStart     *string        `json:"-" dbfield:"work_start"`
	WorkEnd       *string        `json:"-" dbfield:"work_end"`
	DaysOff       pq.StringArray `json:"-" dbfield:"days_off"`
}

// WorkingHours returns the doctor's configured window, substituting the
// default one when the doctor record has none.
func (d Doctor) WorkingHours() WorkingHours {
	if d.WorkStart == nil || d.WorkEnd == nil || *d.WorkStart == "" || *d.WorkEnd == "" {
		workingHours := DefaultWorkingHours()
		workingHours.DaysOff = append(workingHours.DaysOff, d.DaysOff...)
		return workingHours
	}
	return WorkingHours{Start: *d.WorkStart, End: *d.WorkEnd, DaysOff: d.DaysOff}
}

type Patient struct {
	ID        int64     `json:"-" dbfield:"id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name      string    `json:"name" dbfield:"name"`
	Surname   string    `json:"surname" dbfield:"surname"`
	Email     string    `json:"email" dbfield:"email"`
	Telephone string    `json:"telephone" dbfield:"telephone"`
}

type Appointment struct {
	ID        int64     `json:"-" dbfield:"id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID  int64     `json:"-" dbfield:"doctor_id"`
	Doctor    *Doctor   `json:"doctor,omitempty"`
	PatientID int64     `json:"-" dbfield:"patient_id"`
	Patient   *Patient  `json:"patient,omitempty"`
	Date      time.Time `json:"date" dbfield:"date"`
	Status    Status    `json:"status" dbfield:"status"`
	Reason    string    `json:"reason" dbfield:"reason"`
	Notes     *string   `json:"notes,omitempty" dbfield:"notes"`
}

// AppointmentRequest carries the data needed to book an appointment. Doctor and
// Patient are opaque reference strings validated by the scheduler.
type AppointmentRequest struct {
	Doctor  string `json:"doctor"`
	Patient string `json:"patient"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Reason  string `json:"reason"`
	Notes   string `json:"notes,omitempty"`
}

// Validate checks if the given request is valid.
func (a AppointmentRequest) Validate() error {
	if a.Doctor == "" {
		return apierrors.NewValidationError("doctor", "required")
	}
	if a.Patient == "" {
		return apierrors.NewValidationError("patient", "required")
	}
	if a.Date == "" {
		return apierrors.NewValidationError("date", "required")
	}
	if a.Time == "" {
		return apierrors.NewValidationError("time", "required")
	}
	if a.Reason == "" {
		return apierrors.NewValidationError("reason", "required")
	}
	return nil
}

// ListFilter restricts an appointment listing. Zero values mean no filtering.
type ListFilter struct {
	Date   *time.Time
	Status *Status
}

package scheduling

type Error string

const (
	ErrInvalidReference          Error = "invalid reference"
	ErrDoctorNotFound            Error = "doctor not found"
	ErrPatientNotFound           Error = "patient not found"
	ErrAppointmentNotFound       Error = "appointment not found"
	ErrInvalidDateTime           Error = "invalid or past appointment date"
	ErrInvalidSlotAlignment      Error = "appointment time must align to the slot grid"
	ErrOutsideWorkingHours       Error = "appointment time is outside the doctor's working hours"
	ErrSlotUnavailable           Error = "chosen slot is not available"
	ErrSlotBeingBooked           Error = "chosen slot is being booked, try again"
	ErrDailyLimitExceeded        Error = "daily appointment limit reached for this patient"
	ErrInvalidStatusTransition   Error = "requested status change is not allowed"
	ErrCancellationWindowExpired Error = "appointments must be cancelled at least 24 hours in advance"
)

func (e Error) Error() string {
	return string(e)
}

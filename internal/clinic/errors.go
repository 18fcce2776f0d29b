package clinic

type Error string

const (
	ErrDoctorNotFound         Error = "doctor not found"
	ErrPatientNotFound        Error = "patient not found"
	ErrInvalidIdentifier      Error = "invalid identifier"
	ErrEmailAlreadyRegistered Error = "email already registered"
)

func (e Error) Error() string {
	return string(e)
}

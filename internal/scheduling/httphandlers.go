package scheduling

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/redislock"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type httpHandler struct {
	authorizer auth.Authorizer
	service    Service
	logger     *log.Logger
}

type statusUpdateRequest struct {
	Status Status `json:"status"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Setup setups the routes handled by scheduling context.
func Setup(router *chi.Mux, logger *log.Logger, authorizer auth.Authorizer, config configs.Config, dbConn database.Connection, locker redislock.Locker) {
	handler := &httpHandler{logger: logger, authorizer: authorizer, service: NewService(config, dbConn, locker)}

	// protected routes, for patients and administrators
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.PatientRole, auth.AdminRole))
		group.Post("/api/v1/appointments", handler.CreateAppointment)
		group.Post("/api/v1/appointments/{appointmentUUID}/cancel", handler.CancelAppointment)
		group.Get("/api/v1/appointments/slots/{doctorUUID}/{year}/{month}/{day}", handler.GetAvailableSlots)
		group.Get("/api/v1/appointments/patient/{patientUUID}", handler.GetPatientAppointments)
	})

	// protected routes, for doctors and administrators
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.DoctorRole, auth.AdminRole))
		group.Patch("/api/v1/appointments/{appointmentUUID}/status", handler.UpdateAppointmentStatus)
		group.Get("/api/v1/appointments/doctor/{doctorUUID}", handler.GetDoctorAppointments)
	})
}

// parseDateParameters parses the given parameters into a valid time.
func (h httpHandler) parseDateParameters(r *http.Request) (time.Time, error) {
	var zeroTime time.Time
	year := chi.URLParam(r, "year")
	month := chi.URLParam(r, "month")
	day := chi.URLParam(r, "day")
	if year == "" || month == "" || day == "" {
		return zeroTime, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidDateTime), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	concatDate := fmt.Sprintf("%s-%s-%s", year, month, day)
	date, err := time.Parse("2006-01-02", concatDate)
	if err != nil {
		return zeroTime, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidDateTime), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return date, nil
}

// parseUUIDParameter parses a UUID parameter into a valid UUID.
func (h httpHandler) parseUUIDParameter(parName string, r *http.Request) (uuid.UUID, error) {
	zeroUUID := uuid.UUID{}
	uuidPar := chi.URLParam(r, parName)
	if uuidPar == "" {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidReference), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	parsedUUID, err := uuid.Parse(uuidPar)
	if err != nil {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidReference), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return parsedUUID, nil
}

// writeError logs the given error and writes the API response associated to it.
func (h httpHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
	switch v := err.(type) {
	case *apierrors.APIError:
		w.WriteHeader(v.HTTPStatusCode())
		_ = json.NewEncoder(w).Encode(v)
		return
	case *apierrors.ValidationError:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(v)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func (h httpHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentRequest := new(AppointmentRequest)
	if err := json.NewDecoder(r.Body).Decode(appointmentRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	appointment, err := h.service.CreateAppointment(ctx, *appointmentRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := h.parseDateParameters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slots, err := h.service.GetAvailableSlots(ctx, doctorUUID, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(slots)
}

func (h httpHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(statusUpdateRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	appointment, err := h.service.UpdateAppointmentStatus(ctx, appointmentUUID, request.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(cancelRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	appointment, err := h.service.CancelAppointment(ctx, appointmentUUID, request.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientUUID, err := h.parseUUIDParameter("patientUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appointments, err := h.service.ListPatientAppointments(ctx, patientUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointments)
}

func (h httpHandler) GetDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := ListFilter{}
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			h.writeError(w, r, apierrors.NewValidationError("date", "invalid date reference - e.g. 2021-08-10"))
			return
		}
		filter.Date = &date
	}
	if rawStatus := r.URL.Query().Get("status"); rawStatus != "" {
		status := Status(rawStatus)
		if !status.IsValid() {
			h.writeError(w, r, apierrors.NewValidationError("status", "invalid"))
			return
		}
		filter.Status = &status
	}
	appointments, err := h.service.ListDoctorAppointments(ctx, doctorUUID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointments)
}

package clinic

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/google/uuid"
)

type httpHandler struct {
	authorizer auth.Authorizer
	service    Service
	logger     *log.Logger
}

// Setup setups the routes handled by clinic context.
func Setup(router *chi.Mux, logger *log.Logger, authorizer auth.Authorizer, dbConn database.Connection) {
	handler := &httpHandler{logger: logger, authorizer: authorizer, service: NewService(dbConn)}

	// public routes
	router.Group(func(group chi.Router) {
		group.Post("/api/v1/patients", handler.RegisterPatient)
	})

	// protected routes, for any authenticated user
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Get("/api/v1/doctors", handler.ListDoctors)
		group.Get("/api/v1/doctors/{doctorUUID}", handler.GetDoctor)
	})

	// protected routes, for doctors and administrators
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.DoctorRole, auth.AdminRole))
		group.Get("/api/v1/patients/{patientUUID}", handler.GetPatient)
	})

	// protected routes, for administrators only
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.AdminRole))
		group.Post("/api/v1/doctors", handler.RegisterDoctor)
		group.Post("/api/v1/administrators", handler.RegisterAdministrator)
	})
}

// parseUUIDParameter parses a UUID parameter into a valid UUID.
func (h httpHandler) parseUUIDParameter(parName string, r *http.Request) (uuid.UUID, error) {
	zeroUUID := uuid.UUID{}
	uuidPar := chi.URLParam(r, parName)
	if uuidPar == "" {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	parsedUUID, err := uuid.Parse(uuidPar)
	if err != nil {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
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

func (h httpHandler) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	registration := new(DoctorRegistration)
	if err := json.NewDecoder(r.Body).Decode(registration); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	doctor, err := h.service.RegisterDoctor(ctx, *registration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(doctor)
}

func (h httpHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	registration := new(PatientRegistration)
	if err := json.NewDecoder(r.Body).Decode(registration); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	patient, err := h.service.RegisterPatient(ctx, *registration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(patient)
}

func (h httpHandler) RegisterAdministrator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	registration := new(AdministratorRegistration)
	if err := json.NewDecoder(r.Body).Decode(registration); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	account, err := h.service.RegisterAdministrator(ctx, *registration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(account)
}

func (h httpHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctors, err := h.service.ListDoctors(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doctors)
}

func (h httpHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doctor, err := h.service.GetDoctor(ctx, doctorUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doctor)
}

func (h httpHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientUUID, err := h.parseUUIDParameter("patientUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	patient, err := h.service.GetPatient(ctx, patientUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(patient)
}

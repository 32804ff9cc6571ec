package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/middleware"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/service"
)

// VehicleHandler handles HTTP requests for vehicle records.
type VehicleHandler struct {
	service *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: svc}
}

// HandleCreate handles POST /api/vehicles requests.
func (h *VehicleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	req, ok := decodeVehicleRequest(w, r)
	if !ok {
		return
	}

	id, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// HandleList handles GET /api/vehicles requests. Only vehicles assigned to
// the authenticated user are returned.
func (h *VehicleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	vehicles, err := h.service.List(r.Context(), principal.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if vehicles == nil {
		vehicles = []model.VehicleResponse{}
	}

	writeJSON(w, http.StatusOK, vehicles)
}

// HandleUpdate handles PUT /api/vehicles/{vehicle_id} requests.
func (h *VehicleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	req, ok := decodeVehicleRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), principal.UserID, id, req); err != nil {
		switch {
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrVehicleNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle updated successfully"})
}

// HandleDelete handles DELETE /api/vehicles/{vehicle_id} requests.
func (h *VehicleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted successfully"})
}

// HandleNotify handles POST /api/vehicles/{vehicle_id}/notify requests: an
// on-demand email with the vehicle's details.
func (h *VehicleHandler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	if err := h.service.SendInfoEmail(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound), errors.Is(err, service.ErrVehicleEmailMissing):
			writeJSON(w, http.StatusNotFound, errorResponse("vehicle not found or email is missing"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("failed to send email"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully"})
}

func decodeVehicleRequest(w http.ResponseWriter, r *http.Request) (model.VehicleRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return req, false
	}
	return req, true
}

func vehicleID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "vehicle_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrNameRequired) ||
		errors.Is(err, service.ErrRegistrationRequired) ||
		errors.Is(err, service.ErrVINRequired) ||
		errors.Is(err, service.ErrEmailRequired) ||
		errors.Is(err, service.ErrPeriodRequired) ||
		errors.Is(err, service.ErrPeriodNegative) ||
		errors.Is(err, model.ErrInvalidDate)
}

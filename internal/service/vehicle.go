package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/mailer"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/repository"
)

var (
	ErrNameRequired         = errors.New("name is required")
	ErrRegistrationRequired = errors.New("registration_number is required")
	ErrVINRequired          = errors.New("vin is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrPeriodRequired       = errors.New("notification_period is required")
	ErrPeriodNegative       = errors.New("notification_period must not be negative")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrVehicleEmailMissing  = errors.New("vehicle has no email address")
)

// VehicleStore is the slice of the record store the CRUD layer needs.
type VehicleStore interface {
	Insert(ctx context.Context, v *model.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]model.Vehicle, error)
	Update(ctx context.Context, id primitive.ObjectID, v *model.Vehicle) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VehicleService handles vehicle record business logic.
type VehicleService struct {
	store       VehicleStore
	mailer      mailer.Mailer
	observer    string
	sendTimeout time.Duration
}

// NewVehicleService creates a new VehicleService. observer is the fixed
// fleet address carbon-copied on info emails.
func NewVehicleService(store VehicleStore, m mailer.Mailer, observer string, sendTimeout time.Duration) *VehicleService {
	return &VehicleService{
		store:       store,
		mailer:      m,
		observer:    observer,
		sendTimeout: sendTimeout,
	}
}

// Create stores a new vehicle owned by the authenticated user. Both
// notification markers start unset.
func (s *VehicleService) Create(ctx context.Context, owner primitive.ObjectID, req model.VehicleRequest) (string, error) {
	v, err := vehicleFromRequest(req)
	if err != nil {
		return "", err
	}
	v.AssignedUserID = owner

	if err := s.store.Insert(ctx, v); err != nil {
		return "", err
	}
	return v.ID.Hex(), nil
}

// List returns all vehicles assigned to the given user.
func (s *VehicleService) List(ctx context.Context, owner primitive.ObjectID) ([]model.VehicleResponse, error) {
	vehicles, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	result := make([]model.VehicleResponse, len(vehicles))
	for i := range vehicles {
		result[i] = vehicles[i].ToResponse()
	}
	return result, nil
}

// Update replaces a vehicle's fields and restamps its owner. A compliance
// date changed to a new value clears that date's notification marker so a
// stale marker can never suppress a legitimate future reminder; markers
// carry over untouched otherwise.
func (s *VehicleService) Update(ctx context.Context, owner, id primitive.ObjectID, req model.VehicleRequest) error {
	updated, err := vehicleFromRequest(req)
	if err != nil {
		return err
	}
	updated.AssignedUserID = owner

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}

	if current.InspectionDate.Equal(updated.InspectionDate) {
		updated.InspectionNotifiedForDate = current.InspectionNotifiedForDate
	}
	if current.InsuranceDate.Equal(updated.InsuranceDate) {
		updated.InsuranceNotifiedForDate = current.InsuranceNotifiedForDate
	}

	if err := s.store.Update(ctx, id, updated); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}
	return nil
}

// Delete removes a vehicle from the store and all future scans.
func (s *VehicleService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return ErrVehicleNotFound
	}
	return err
}

// SendInfoEmail dispatches the vehicle's details to its owner email with the
// fleet observer in copy.
func (s *VehicleService) SendInfoEmail(ctx context.Context, id primitive.ObjectID) error {
	v, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}
	if v.Email == "" {
		return ErrVehicleEmailMissing
	}

	notes := v.Notes
	if notes == "" {
		notes = "None"
	}

	msg := mailer.Message{
		Subject: fmt.Sprintf("Vehicle details: %s (%s)", v.Name, v.RegistrationNumber),
		HTMLBody: fmt.Sprintf(
			"<html><body>"+
				"<h2>Vehicle details</h2>"+
				"<p><b>Name:</b> %s</p>"+
				"<p><b>Registration number:</b> %s</p>"+
				"<p><b>VIN:</b> %s</p>"+
				"<p><b>Inspection date:</b> %s</p>"+
				"<p><b>Insurance date:</b> %s</p>"+
				"<p><b>Notes:</b> %s</p>"+
				"</body></html>",
			v.Name, v.RegistrationNumber, v.VIN,
			model.FormatDate(v.InspectionDate), model.FormatDate(v.InsuranceDate), notes),
		To: v.Email,
		Cc: s.observer,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	return s.mailer.Send(sendCtx, msg)
}

// vehicleFromRequest validates a payload and builds a vehicle document with
// both markers unset.
func vehicleFromRequest(req model.VehicleRequest) (*model.Vehicle, error) {
	switch {
	case req.Name == "":
		return nil, ErrNameRequired
	case req.RegistrationNumber == "":
		return nil, ErrRegistrationRequired
	case req.VIN == "":
		return nil, ErrVINRequired
	case req.Email == "":
		return nil, ErrEmailRequired
	case req.NotificationPeriod == nil:
		return nil, ErrPeriodRequired
	case *req.NotificationPeriod < 0:
		return nil, ErrPeriodNegative
	}

	inspection, err := model.ParseDate(req.InspectionDate)
	if err != nil {
		return nil, err
	}
	insurance, err := model.ParseDate(req.InsuranceDate)
	if err != nil {
		return nil, err
	}

	return &model.Vehicle{
		Name:               req.Name,
		SecondaryName:      req.SecondaryName,
		RegistrationNumber: req.RegistrationNumber,
		VIN:                req.VIN,
		InspectionDate:     inspection,
		InsuranceDate:      insurance,
		Email:              req.Email,
		NotificationPeriod: *req.NotificationPeriod,
		Notes:              req.Notes,
	}, nil
}

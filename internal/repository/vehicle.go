package repository

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetminder/fleetminder-go/internal/model"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// Marker field names in the vehicles collection. The expiration scan writes
// exactly one of these per successful dispatch.
const (
	MarkerInspection = "inspection_notified_for_date"
	MarkerInsurance  = "insurance_notified_for_date"
)

// VehicleRepository handles vehicle persistence operations.
type VehicleRepository struct {
	coll *mongo.Collection
}

// NewVehicleRepository creates a new VehicleRepository on the vehicles collection.
func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{coll: db.Collection("vehicles")}
}

// Insert stores a new vehicle and sets the generated ID on the struct.
func (r *VehicleRepository) Insert(ctx context.Context, v *model.Vehicle) error {
	res, err := r.coll.InsertOne(ctx, v)
	if err != nil {
		return err
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		v.ID = id
	}
	return nil
}

// GetByID retrieves a vehicle by its id.
func (r *VehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return v, nil
}

// ListByOwner retrieves all vehicles assigned to the given user.
func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]model.Vehicle, error) {
	return r.list(ctx, bson.M{"assigned_user_id": ownerID})
}

// ListAll retrieves every vehicle in the collection. The expiration scan
// reads the whole fleet unconditionally on each invocation; a document that
// fails to decode is logged and skipped so one bad record cannot abort the
// whole pass.
func (r *VehicleRepository) ListAll(ctx context.Context) ([]model.Vehicle, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var vehicles []model.Vehicle
	for cur.Next(ctx) {
		var v model.Vehicle
		if err := cur.Decode(&v); err != nil {
			slog.Warn("skipping undecodable vehicle document", "error", err)
			continue
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, cur.Err()
}

func (r *VehicleRepository) list(ctx context.Context, filter bson.M) ([]model.Vehicle, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var vehicles []model.Vehicle
	for cur.Next(ctx) {
		var v model.Vehicle
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, cur.Err()
}

// Update replaces all mutable fields of a vehicle with the given state,
// markers included. The caller decides whether markers carry over or reset.
func (r *VehicleRepository) Update(ctx context.Context, id primitive.ObjectID, v *model.Vehicle) error {
	update := bson.M{"$set": bson.M{
		"name":                         v.Name,
		"secondary_name":               v.SecondaryName,
		"registration_number":          v.RegistrationNumber,
		"vin":                          v.VIN,
		"inspection_date":              v.InspectionDate,
		"insurance_date":               v.InsuranceDate,
		"assigned_user_id":             v.AssignedUserID,
		"email":                        v.Email,
		"notification_period":          v.NotificationPeriod,
		"notes":                        v.Notes,
		"inspection_notified_for_date": v.InspectionNotifiedForDate,
		"insurance_notified_for_date":  v.InsuranceNotifiedForDate,
	}}

	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// SetNotifiedDate persists a single notification marker, recording that a
// reminder for the given compliance date was dispatched. field must be
// MarkerInspection or MarkerInsurance.
func (r *VehicleRepository) SetNotifiedDate(ctx context.Context, id primitive.ObjectID, field, date string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{field: date}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// Delete removes a vehicle, excluding it from all future scans.
func (r *VehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the canonical calendar-date representation used everywhere a
// compliance date crosses a boundary: request payloads, responses, and the
// persisted notification markers.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Vehicle represents a vehicle document in the vehicles collection.
//
// The notification markers hold the exact compliance date (formatted with
// DateLayout) for which a reminder was already dispatched, or nil if none was.
// They are the sole de-duplication state of the expiration scan.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	SecondaryName      string             `bson:"secondary_name,omitempty"`
	RegistrationNumber string             `bson:"registration_number"`
	VIN                string             `bson:"vin"`
	InspectionDate     time.Time          `bson:"inspection_date"`
	InsuranceDate      time.Time          `bson:"insurance_date"`
	AssignedUserID     primitive.ObjectID `bson:"assigned_user_id"`
	Email              string             `bson:"email"`
	NotificationPeriod int                `bson:"notification_period"`
	Notes              string             `bson:"notes,omitempty"`

	InspectionNotifiedForDate *string `bson:"inspection_notified_for_date"`
	InsuranceNotifiedForDate  *string `bson:"insurance_notified_for_date"`
}

// VehicleRequest represents a vehicle create or full-update payload.
// Compliance dates travel as YYYY-MM-DD strings.
type VehicleRequest struct {
	Name               string `json:"name"`
	SecondaryName      string `json:"secondary_name,omitempty"`
	RegistrationNumber string `json:"registration_number"`
	VIN                string `json:"vin"`
	InspectionDate     string `json:"inspection_date"`
	InsuranceDate      string `json:"insurance_date"`
	Email              string `json:"email"`
	NotificationPeriod *int   `json:"notification_period"`
	Notes              string `json:"notes,omitempty"`
}

// VehicleResponse represents vehicle data returned by the API.
type VehicleResponse struct {
	ID                 string `json:"_id"`
	Name               string `json:"name"`
	SecondaryName      string `json:"secondary_name,omitempty"`
	RegistrationNumber string `json:"registration_number"`
	VIN                string `json:"vin"`
	InspectionDate     string `json:"inspection_date"`
	InsuranceDate      string `json:"insurance_date"`
	AssignedUserID     string `json:"assigned_user_id"`
	Email              string `json:"email"`
	NotificationPeriod int    `json:"notification_period"`
	Notes              string `json:"notes,omitempty"`

	InspectionNotifiedForDate *string `json:"inspection_notified_for_date"`
	InsuranceNotifiedForDate  *string `json:"insurance_notified_for_date"`
}

// ToResponse converts a Vehicle document to its API representation.
func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		ID:                        v.ID.Hex(),
		Name:                      v.Name,
		SecondaryName:             v.SecondaryName,
		RegistrationNumber:        v.RegistrationNumber,
		VIN:                       v.VIN,
		InspectionDate:            FormatDate(v.InspectionDate),
		InsuranceDate:             FormatDate(v.InsuranceDate),
		AssignedUserID:            v.AssignedUserID.Hex(),
		Email:                     v.Email,
		NotificationPeriod:        v.NotificationPeriod,
		Notes:                     v.Notes,
		InspectionNotifiedForDate: v.InspectionNotifiedForDate,
		InsuranceNotifiedForDate:  v.InsuranceNotifiedForDate,
	}
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders the calendar-date part of t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

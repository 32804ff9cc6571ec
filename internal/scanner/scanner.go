// Package scanner implements the daily expiration scan: one pass over every
// vehicle, a trigger-date decision per compliance date kind, at-most-once
// reminder dispatch recorded in the vehicle's notification markers.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetminder/fleetminder-go/internal/mailer"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/repository"
)

// VehicleStore is the slice of the record store the scan needs: the full
// fleet read and the single-marker write.
type VehicleStore interface {
	ListAll(ctx context.Context) ([]model.Vehicle, error)
	SetNotifiedDate(ctx context.Context, id primitive.ObjectID, field, date string) error
}

// Report summarizes one scan invocation. Failures are per vehicle per date
// kind and never abort the pass; they only show up here and in the log.
type Report struct {
	Scanned int
	Sent    int
	Skipped int
	Failed  int
}

// outcome is the result of evaluating one date kind on one vehicle.
type outcome int

const (
	outcomeNone    outcome = iota // today is not the trigger date
	outcomeSent                   // reminder dispatched and marker persisted
	outcomeSkipped                // marker already records this compliance date
	outcomeFailed                 // dispatch failed, marker left untouched
)

// dateKind parameterizes the shared decision rule over the two compliance
// dates of a vehicle.
type dateKind struct {
	label    string
	marker   string
	date     func(*model.Vehicle) time.Time
	notified func(*model.Vehicle) *string
	subject  string
}

var kinds = []dateKind{
	{
		label:    "inspection",
		marker:   repository.MarkerInspection,
		date:     func(v *model.Vehicle) time.Time { return v.InspectionDate },
		notified: func(v *model.Vehicle) *string { return v.InspectionNotifiedForDate },
		subject:  "technical inspection",
	},
	{
		label:    "insurance",
		marker:   repository.MarkerInsurance,
		date:     func(v *model.Vehicle) time.Time { return v.InsuranceDate },
		notified: func(v *model.Vehicle) *string { return v.InsuranceNotifiedForDate },
		subject:  "insurance coverage",
	},
}

// Scanner evaluates the expiration decision rule across the whole fleet.
// It keeps no state between invocations; the markers in the vehicle
// documents are the only memory.
type Scanner struct {
	store       VehicleStore
	mailer      mailer.Mailer
	observer    string
	sendTimeout time.Duration
	now         func() time.Time
}

// New creates a Scanner. observer is the fixed fleet address carbon-copied
// on every reminder.
func New(store VehicleStore, m mailer.Mailer, observer string, sendTimeout time.Duration) *Scanner {
	return &Scanner{
		store:       store,
		mailer:      m,
		observer:    observer,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// Run performs one full scan. It returns an error only when the fleet itself
// cannot be read; everything per-vehicle is absorbed into the Report.
func (s *Scanner) Run(ctx context.Context) (Report, error) {
	vehicles, err := s.store.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing vehicles: %w", err)
	}

	var report Report
	for i := range vehicles {
		v := &vehicles[i]
		report.Scanned++

		if v.Email == "" {
			continue
		}

		for _, k := range kinds {
			out, err := s.evaluate(ctx, v, k)
			switch out {
			case outcomeSent:
				report.Sent++
				if err != nil {
					// Sent but the marker write failed: the next run on the
					// same trigger day would send again. Surface it loudly.
					slog.Error("reminder sent but marker not persisted",
						"vehicle_id", v.ID.Hex(), "kind", k.label, "error", err)
				} else {
					slog.Info("reminder sent",
						"vehicle_id", v.ID.Hex(), "vehicle", v.Name, "kind", k.label)
				}
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
				slog.Warn("reminder dispatch failed",
					"vehicle_id", v.ID.Hex(), "vehicle", v.Name, "kind", k.label, "error", err)
			}
		}
	}

	return report, nil
}

// evaluate applies the decision rule for one date kind on one vehicle:
// fire only when today equals compliance date minus the notification period,
// and only if the marker does not already record that exact date.
func (s *Scanner) evaluate(ctx context.Context, v *model.Vehicle, k dateKind) (outcome, error) {
	due := k.date(v)
	trigger := due.AddDate(0, 0, -v.NotificationPeriod)
	if !sameCalendarDay(s.now(), trigger) {
		return outcomeNone, nil
	}

	dueStr := model.FormatDate(due)
	if m := k.notified(v); m != nil && *m == dueStr {
		return outcomeSkipped, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.mailer.Send(sendCtx, s.composeReminder(v, k, dueStr)); err != nil {
		return outcomeFailed, err
	}

	if err := s.store.SetNotifiedDate(ctx, v.ID, k.marker, dueStr); err != nil {
		return outcomeSent, fmt.Errorf("persisting %s marker: %w", k.label, err)
	}

	return outcomeSent, nil
}

func (s *Scanner) composeReminder(v *model.Vehicle, k dateKind, dueStr string) mailer.Message {
	return mailer.Message{
		Subject: fmt.Sprintf("Reminder: upcoming %s deadline for %s", k.subject, v.Name),
		HTMLBody: fmt.Sprintf(
			"Hello,<br><br>"+
				"This is a reminder that the %s for vehicle "+
				"<b>%s (%s)</b> expires on <b>%s</b>.<br><br>"+
				"Best regards,<br>Fleet Team",
			k.subject, v.Name, v.RegistrationNumber, dueStr),
		To: v.Email,
		Cc: s.observer,
	}
}

// sameCalendarDay reports whether a and b fall on the same calendar date,
// each in its own location. Compliance dates carry no meaningful
// time-of-day component.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

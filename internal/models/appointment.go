package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses. Booking always creates a pending appointment; the
// doctor's decision moves it to approved or cancelled.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusApproved  = "approved"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID    primitive.ObjectID `bson:"userId" json:"userId"`
	DoctorID     primitive.ObjectID `bson:"doctorId" json:"doctorId"` // the doctor's user id
	Date         string             `bson:"date" json:"date"`         // raw booking input, kept alongside scheduledAt
	Time         string             `bson:"time" json:"time"`
	ScheduledAt  *time.Time         `bson:"scheduledAt" json:"scheduledAt"` // nil on legacy records booked with an unparsable date
	Status       string             `bson:"status" json:"status"`
	CancelReason string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	ReminderSent bool               `bson:"reminderSent,omitempty" json:"reminderSent,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

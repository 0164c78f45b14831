package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doctor registration statuses. Only approved doctors are bookable.
const (
	DoctorStatusPending  = "pending"
	DoctorStatusApproved = "approved"
	DoctorStatusRejected = "rejected"
)

// Doctor is the registration record created when a user signs up as a
// doctor. It is keyed by the candidate's user id and reviewed by an admin.
type Doctor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Specialty string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
	License   string             `bson:"license,omitempty" json:"license,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Approval is one immutable audit entry for an admin decision on a doctor.
type Approval struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID  primitive.ObjectID `bson:"doctorId" json:"doctorId"` // the doctor's user id
	AdminID   primitive.ObjectID `bson:"adminId" json:"adminId"`
	AdminName string             `bson:"adminName,omitempty" json:"adminName,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried by users.role. A doctor candidate stays in doctor_pending
// until an admin decides; the decision rewrites the role to doctor or rejected.
const (
	RolePatient       = "patient"
	RoleDoctor        = "doctor"
	RoleDoctorPending = "doctor_pending"
	RoleRejected      = "rejected"
	RoleAdmin         = "admin"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // Hide from JSON responses
	Role      string             `bson:"role" json:"role"`
	PhotoURL  string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Admin     bool               `bson:"admin,omitempty" json:"admin,omitempty"` // custom claim, granted via the grantadmin CLI
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

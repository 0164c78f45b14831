package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when another approved appointment already
	// occupies the same (doctor, scheduledAt) slot.
	ErrConflict = errors.New("store: slot already approved")
	// ErrUnscheduled is returned when an appointment has no scheduled time
	// and therefore cannot be approved.
	ErrUnscheduled = errors.New("store: appointment has no scheduled time")
	// ErrDuplicate is returned when a unique constraint is violated,
	// typically an already registered email.
	ErrDuplicate = errors.New("store: duplicate record")
)

// Store is the persistence boundary of the application. The production
// implementation is Mongo; tests use Memory.
type Store interface {
	// Users
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserName(ctx context.Context, id primitive.ObjectID, name string) error
	UpdateUserPhotoURL(ctx context.Context, id primitive.ObjectID, url string) error
	SetUserAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error

	// Doctors and their approval audit log
	InsertDoctor(ctx context.Context, d *models.Doctor) error
	GetDoctorByUser(ctx context.Context, userID primitive.ObjectID) (*models.Doctor, error)
	ListDoctorsByStatus(ctx context.Context, status string) ([]models.Doctor, error)
	// DecideDoctor updates the doctor's status and the linked user's role as
	// one unit and returns the updated doctor plus the previous status.
	DecideDoctor(ctx context.Context, userID primitive.ObjectID, status, role string) (*models.Doctor, string, error)
	AppendApproval(ctx context.Context, a *models.Approval) error
	ListApprovals(ctx context.Context, doctorUserID primitive.ObjectID, limit int64) ([]models.Approval, error)

	// Appointments
	InsertAppointment(ctx context.Context, a *models.Appointment) error
	ListAppointmentsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error)
	ListPendingForDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error)
	// ApproveAppointment performs the transactional slot-conflict check and
	// flips the appointment to approved.
	ApproveAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id primitive.ObjectID, reason string) error
	ListDueReminders(ctx context.Context, from, until time.Time) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrandria/hospital-api/internal/models"
)

// Mongo implements Store on top of a MongoDB database. The approve flows use
// multi-document transactions, so the deployment must be a replica set.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

func NewMongo(client *mongo.Client, database string, logger zerolog.Logger) *Mongo {
	return &Mongo{
		client: client,
		db:     client.Database(database),
		logger: logger.With().Str("component", "store").Logger(),
	}
}

func (m *Mongo) users() *mongo.Collection        { return m.db.Collection("users") }
func (m *Mongo) doctors() *mongo.Collection      { return m.db.Collection("doctors") }
func (m *Mongo) approvals() *mongo.Collection    { return m.db.Collection("doctor_approvals") }
func (m *Mongo) appointments() *mongo.Collection { return m.db.Collection("appointments") }

// EnsureIndexes creates the indexes the queries below rely on. Called once at
// startup; safe to repeat.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("store: users email index: %w", err)
	}
	_, err = m.doctors().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("store: doctors userId index: %w", err)
	}
	_, err = m.appointments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduledAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("store: appointments slot index: %w", err)
	}
	_, err = m.approvals().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("store: approvals index: %w", err)
	}
	return nil
}

// --- Users ---

func (m *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	if _, err := m.users().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	return nil
}

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := m.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &u, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := m.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user by email: %w", err)
	}
	return &u, nil
}

func (m *Mongo) UpdateUserName(ctx context.Context, id primitive.ObjectID, name string) error {
	return m.updateUser(ctx, id, bson.M{"name": name})
}

func (m *Mongo) UpdateUserPhotoURL(ctx context.Context, id primitive.ObjectID, url string) error {
	return m.updateUser(ctx, id, bson.M{"photoUrl": url})
}

func (m *Mongo) SetUserAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error {
	return m.updateUser(ctx, id, bson.M{"admin": admin})
}

func (m *Mongo) updateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := m.users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("store: update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Doctors ---

func (m *Mongo) InsertDoctor(ctx context.Context, d *models.Doctor) error {
	if _, err := m.doctors().InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert doctor: %w", err)
	}
	return nil
}

func (m *Mongo) GetDoctorByUser(ctx context.Context, userID primitive.ObjectID) (*models.Doctor, error) {
	var d models.Doctor
	err := m.doctors().FindOne(ctx, bson.M{"userId": userID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get doctor: %w", err)
	}
	return &d, nil
}

func (m *Mongo) ListDoctorsByStatus(ctx context.Context, status string) ([]models.Doctor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.doctors().Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list doctors: %w", err)
	}
	defer cursor.Close(ctx)

	var doctors []models.Doctor
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("store: decode doctors: %w", err)
	}
	return doctors, nil
}

// DecideDoctor flips the doctor's status and the linked user's role in one
// transaction, so a crash between the two writes cannot leave an approved
// doctor whose user still carries the doctor_pending role.
func (m *Mongo) DecideDoctor(ctx context.Context, userID primitive.ObjectID, status, role string) (*models.Doctor, string, error) {
	session, err := m.client.StartSession()
	if err != nil {
		return nil, "", fmt.Errorf("store: start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// FindOneAndUpdate returns the pre-image, which carries the previous
		// status needed for transition-idempotent notifications.
		var before models.Doctor
		err := m.doctors().FindOneAndUpdate(sc,
			bson.M{"userId": userID},
			bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
		).Decode(&before)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("store: update doctor status: %w", err)
		}

		res, err := m.users().UpdateOne(sc, bson.M{"_id": userID}, bson.M{"$set": bson.M{"role": role}})
		if err != nil {
			return nil, fmt.Errorf("store: update user role: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return &before, nil
	})
	if err != nil {
		return nil, "", err
	}

	before := result.(*models.Doctor)
	previous := before.Status
	updated := *before
	updated.Status = status
	updated.UpdatedAt = now
	return &updated, previous, nil
}

func (m *Mongo) AppendApproval(ctx context.Context, a *models.Approval) error {
	if _, err := m.approvals().InsertOne(ctx, a); err != nil {
		return fmt.Errorf("store: append approval: %w", err)
	}
	return nil
}

func (m *Mongo) ListApprovals(ctx context.Context, doctorUserID primitive.ObjectID, limit int64) ([]models.Approval, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := m.approvals().Find(ctx, bson.M{"doctorId": doctorUserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list approvals: %w", err)
	}
	defer cursor.Close(ctx)

	var approvals []models.Approval
	if err := cursor.All(ctx, &approvals); err != nil {
		return nil, fmt.Errorf("store: decode approvals: %w", err)
	}
	return approvals, nil
}

// --- Appointments ---

func (m *Mongo) InsertAppointment(ctx context.Context, a *models.Appointment) error {
	if _, err := m.appointments().InsertOne(ctx, a); err != nil {
		return fmt.Errorf("store: insert appointment: %w", err)
	}
	return nil
}

// ListAppointmentsForPatient returns the patient's appointments newest first.
// When the ordered query fails (typically a missing index) it falls back to
// an unordered one instead of surfacing the error.
func (m *Mongo) ListAppointmentsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	filter := bson.M{"userId": patientID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	appointments, err := m.findAppointments(ctx, filter, opts)
	if err != nil {
		m.logger.Warn().Err(err).Str("patient", patientID.Hex()).
			Msg("ordered appointment query failed, retrying unordered")
		return m.findAppointments(ctx, filter, options.Find())
	}
	return appointments, nil
}

func (m *Mongo) ListPendingForDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	filter := bson.M{"doctorId": doctorID, "status": models.AppointmentStatusPending}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	return m.findAppointments(ctx, filter, opts)
}

func (m *Mongo) findAppointments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Appointment, error) {
	cursor, err := m.appointments().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("store: decode appointments: %w", err)
	}
	return appointments, nil
}

// ApproveAppointment runs the slot-conflict check and the status flip as one
// transaction: at most one approved appointment may exist for a given
// (doctor, scheduledAt) pair.
func (m *Mongo) ApproveAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	session, err := m.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("store: start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var appt models.Appointment
		err := m.appointments().FindOne(sc, bson.M{"_id": id}).Decode(&appt)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("store: get appointment: %w", err)
		}
		if appt.ScheduledAt == nil {
			return nil, ErrUnscheduled
		}

		taken, err := m.appointments().CountDocuments(sc, bson.M{
			"doctorId":    appt.DoctorID,
			"status":      models.AppointmentStatusApproved,
			"scheduledAt": *appt.ScheduledAt,
		})
		if err != nil {
			return nil, fmt.Errorf("store: slot check: %w", err)
		}
		if taken > 0 {
			return nil, ErrConflict
		}

		_, err = m.appointments().UpdateOne(sc, bson.M{"_id": id},
			bson.M{"$set": bson.M{"status": models.AppointmentStatusApproved, "updatedAt": now}})
		if err != nil {
			return nil, fmt.Errorf("store: approve appointment: %w", err)
		}
		appt.Status = models.AppointmentStatusApproved
		appt.UpdatedAt = now
		return &appt, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Appointment), nil
}

func (m *Mongo) CancelAppointment(ctx context.Context, id primitive.ObjectID, reason string) error {
	update := bson.M{"status": models.AppointmentStatusCancelled, "updatedAt": time.Now().UTC()}
	if reason != "" {
		update["cancelReason"] = reason
	}
	res, err := m.appointments().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("store: cancel appointment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) ListDueReminders(ctx context.Context, from, until time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"status":       models.AppointmentStatusApproved,
		"scheduledAt":  bson.M{"$gte": from, "$lt": until},
		"reminderSent": bson.M{"$ne": true},
	}
	return m.findAppointments(ctx, filter, options.Find())
}

func (m *Mongo) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.appointments().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"reminderSent": true, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("store: mark reminder sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*Mongo)(nil)

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/store"
)

// DoctorService carries the doctor registration workflow: the public
// directory, the admin review queue and the approval decision itself.
type DoctorService struct {
	store    store.Store
	notifier *Notifier
	logger   zerolog.Logger
}

func NewDoctorService(st store.Store, notifier *Notifier, logger zerolog.Logger) *DoctorService {
	return &DoctorService{
		store:    st,
		notifier: notifier,
		logger:   logger.With().Str("component", "doctors").Logger(),
	}
}

// Directory lists the doctors a patient can book: approved only, by name.
func (s *DoctorService) Directory(ctx context.Context) ([]models.Doctor, error) {
	return s.store.ListDoctorsByStatus(ctx, models.DoctorStatusApproved)
}

// PendingQueue lists the registrations awaiting an admin decision.
func (s *DoctorService) PendingQueue(ctx context.Context) ([]models.Doctor, error) {
	return s.store.ListDoctorsByStatus(ctx, models.DoctorStatusPending)
}

// History returns the most recent decisions recorded for a doctor.
func (s *DoctorService) History(ctx context.Context, doctorUID primitive.ObjectID, limit int64) ([]models.Approval, error) {
	return s.store.ListApprovals(ctx, doctorUID, limit)
}

// Decide applies an admin decision on a doctor registration: the doctor's
// status and the linked user's role move together (approved → doctor,
// rejected → rejected), then an audit entry is appended best-effort. An audit
// write failure never rolls back the decision. Re-deciding an already decided
// doctor is allowed.
func (s *DoctorService) Decide(ctx context.Context, adminID primitive.ObjectID, adminName string, doctorUID primitive.ObjectID, decision, note string) (*models.Doctor, error) {
	var role string
	switch decision {
	case models.DoctorStatusApproved:
		role = models.RoleDoctor
	case models.DoctorStatusRejected:
		role = models.RoleRejected
	default:
		return nil, ValidationError(fmt.Sprintf("unknown decision %q", decision))
	}

	doctor, previous, err := s.store.DecideDoctor(ctx, doctorUID, decision, role)
	if err != nil {
		return nil, err
	}

	audit := &models.Approval{
		DoctorID:  doctorUID,
		AdminID:   adminID,
		AdminName: adminName,
		Status:    decision,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendApproval(ctx, audit); err != nil {
		s.logger.Warn().Err(err).Str("doctor", doctorUID.Hex()).Msg("approval audit write failed")
	}

	// One email per actual transition, never on a repeated decision.
	if previous != doctor.Status {
		s.notifier.DoctorStatusChanged(ctx, doctor)
	}

	s.logger.Info().
		Str("doctor", doctorUID.Hex()).
		Str("admin", adminID.Hex()).
		Str("decision", decision).
		Str("previous", previous).
		Msg("doctor decision applied")
	return doctor, nil
}

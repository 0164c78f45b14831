package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/store"
)

// Booking inputs are a calendar date and a wall-clock time, combined into one
// instant in the server's location.
const (
	bookingDateLayout = "2006-01-02"
	bookingTimeLayout = "15:04"
)

// AppointmentService carries booking and the doctor's decision on it.
type AppointmentService struct {
	store    store.Store
	notifier *Notifier
	logger   zerolog.Logger
}

func NewAppointmentService(st store.Store, notifier *Notifier, logger zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		store:    st,
		notifier: notifier,
		logger:   logger.With().Str("component", "appointments").Logger(),
	}
}

// Book creates a pending appointment. There is deliberately no slot-conflict
// check here: several patients may book the same slot and the doctor's
// approval arbitrates. Unlike the historical behaviour that stored a null
// instant, an unparsable date or time is rejected outright.
func (s *AppointmentService) Book(ctx context.Context, patientID, doctorID primitive.ObjectID, date, timeOfDay string) (*models.Appointment, error) {
	if doctorID.IsZero() || date == "" || timeOfDay == "" {
		return nil, ValidationError("doctor, date and time are required")
	}

	scheduledAt, err := time.ParseInLocation(bookingDateLayout+" "+bookingTimeLayout, date+" "+timeOfDay, time.Local)
	if err != nil {
		return nil, ValidationError("invalid date or time")
	}

	appt := &models.Appointment{
		ID:          primitive.NewObjectID(),
		PatientID:   patientID,
		DoctorID:    doctorID,
		Date:        date,
		Time:        timeOfDay,
		ScheduledAt: &scheduledAt,
		Status:      models.AppointmentStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertAppointment(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment", appt.ID.Hex()).
		Str("patient", patientID.Hex()).
		Str("doctor", doctorID.Hex()).
		Time("scheduledAt", scheduledAt).
		Msg("appointment booked")
	return appt, nil
}

// ForPatient lists the patient's own appointments, newest first.
func (s *AppointmentService) ForPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	return s.store.ListAppointmentsForPatient(ctx, patientID)
}

// PendingForDoctor lists the doctor's review queue ordered by schedule.
func (s *AppointmentService) PendingForDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	return s.store.ListPendingForDoctor(ctx, doctorID)
}

// Approve flips a pending appointment to approved. The slot-conflict check
// runs transactionally in the store; on success both parties are notified.
func (s *AppointmentService) Approve(ctx context.Context, apptID primitive.ObjectID) (*models.Appointment, error) {
	appt, err := s.store.ApproveAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}

	patient, perr := s.store.GetUser(ctx, appt.PatientID)
	if perr != nil && !errors.Is(perr, store.ErrNotFound) {
		s.logger.Warn().Err(perr).Str("appointment", apptID.Hex()).Msg("patient lookup for confirmation failed")
	}
	doctor, derr := s.store.GetDoctorByUser(ctx, appt.DoctorID)
	if derr != nil && !errors.Is(derr, store.ErrNotFound) {
		s.logger.Warn().Err(derr).Str("appointment", apptID.Hex()).Msg("doctor lookup for confirmation failed")
	}
	s.notifier.AppointmentApproved(ctx, appt, patient, doctor)

	s.logger.Info().Str("appointment", apptID.Hex()).Msg("appointment approved")
	return appt, nil
}

// Reject cancels a pending appointment with an optional reason. The update
// is unconditional: no conflict check applies to a rejection.
func (s *AppointmentService) Reject(ctx context.Context, apptID primitive.ObjectID, reason string) error {
	if err := s.store.CancelAppointment(ctx, apptID, reason); err != nil {
		return err
	}
	s.logger.Info().Str("appointment", apptID.Hex()).Msg("appointment rejected")
	return nil
}

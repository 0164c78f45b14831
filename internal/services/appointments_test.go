package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/store"
)

func TestBookCreatesPendingAppointment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	patientID := env.seedPatient(t, "Paul", "paul@example.test")
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")

	appt, err := env.appointments.Book(ctx, patientID, doctorUID, "2024-01-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, appt.Status)
	assert.Equal(t, "2024-01-01", appt.Date)
	assert.Equal(t, "10:00", appt.Time)
	require.NotNil(t, appt.ScheduledAt)
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	assert.True(t, appt.ScheduledAt.Equal(want))

	mine, err := env.appointments.ForPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, appt.ID, mine[0].ID)
}

func TestBookMissingFieldsCreatesNothing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	patientID := env.seedPatient(t, "Paul", "paul@example.test")
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")

	cases := []struct {
		name     string
		doctorID primitive.ObjectID
		date     string
		time     string
	}{
		{"no doctor", primitive.NilObjectID, "2024-01-01", "10:00"},
		{"no date", doctorUID, "", "10:00"},
		{"no time", doctorUID, "2024-01-01", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.appointments.Book(ctx, patientID, tc.doctorID, tc.date, tc.time)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	// The store is untouched.
	mine, err := env.appointments.ForPatient(ctx, patientID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestBookRejectsUnparsableSchedule(t *testing.T) {
	env := newTestEnv()
	patientID := env.seedPatient(t, "Paul", "paul@example.test")
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")

	for _, tc := range [][2]string{
		{"not-a-date", "10:00"},
		{"2024-01-01", "25:99"},
		{"01/01/2024", "10:00"},
	} {
		_, err := env.appointments.Book(context.Background(), patientID, doctorUID, tc[0], tc[1])
		var verr ValidationError
		require.ErrorAs(t, err, &verr, "date=%s time=%s", tc[0], tc[1])
	}
}

// Two patients may book the same slot; only the first approval wins.
func TestApproveConflictOnSameSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	adminID := env.seedAdmin(t)
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")
	env.approveDoctor(t, adminID, doctorUID)
	p := env.seedPatient(t, "Paul", "paul@example.test")
	q := env.seedPatient(t, "Quentin", "quentin@example.test")

	a, err := env.appointments.Book(ctx, p, doctorUID, "2024-01-01", "10:00")
	require.NoError(t, err)
	b, err := env.appointments.Book(ctx, q, doctorUID, "2024-01-01", "10:00")
	require.NoError(t, err)

	approved, err := env.appointments.Approve(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusApproved, approved.Status)

	_, err = env.appointments.Approve(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrConflict)

	// B stays pending in the doctor's queue.
	queue, err := env.appointments.PendingForDoctor(ctx, doctorUID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, b.ID, queue[0].ID)
}

func TestApproveSameSlotDifferentDoctors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	adminID := env.seedAdmin(t)
	d1 := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")
	d2 := env.seedDoctor(t, "Dr Rabe", "rabe@example.test")
	env.approveDoctor(t, adminID, d1)
	env.approveDoctor(t, adminID, d2)
	p := env.seedPatient(t, "Paul", "paul@example.test")

	a, err := env.appointments.Book(ctx, p, d1, "2024-01-01", "10:00")
	require.NoError(t, err)
	b, err := env.appointments.Book(ctx, p, d2, "2024-01-01", "10:00")
	require.NoError(t, err)

	_, err = env.appointments.Approve(ctx, a.ID)
	require.NoError(t, err)
	_, err = env.appointments.Approve(ctx, b.ID)
	require.NoError(t, err)
}

func TestApproveSendsConfirmations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	adminID := env.seedAdmin(t)
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")
	env.approveDoctor(t, adminID, doctorUID)
	p := env.seedPatient(t, "Paul", "paul@example.test")

	appt, err := env.appointments.Book(ctx, p, doctorUID, "2024-01-01", "10:00")
	require.NoError(t, err)
	_, err = env.appointments.Approve(ctx, appt.ID)
	require.NoError(t, err)

	patientMail := env.sender.to("paul@example.test")
	require.Len(t, patientMail, 1)
	assert.Equal(t, "Confirmation de rendez-vous", patientMail[0].Subject)

	// The doctor got the registration email plus the confirmation.
	doctorMail := env.sender.to("rakoto@example.test")
	require.Len(t, doctorMail, 2)
	assert.Contains(t, doctorMail[1].Subject, "Nouveau rendez-vous confirmé")
}

func TestApproveUnknownAppointment(t *testing.T) {
	env := newTestEnv()
	_, err := env.appointments.Approve(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApproveUnscheduledAppointment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedPatient(t, "Paul", "paul@example.test")
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")

	// Legacy record booked before unparsable schedules were rejected.
	appt := &models.Appointment{
		ID:        primitive.NewObjectID(),
		PatientID: p,
		DoctorID:  doctorUID,
		Date:      "pas-une-date",
		Time:      "10:00",
		Status:    models.AppointmentStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, env.store.InsertAppointment(ctx, appt))

	_, err := env.appointments.Approve(ctx, appt.ID)
	assert.ErrorIs(t, err, store.ErrUnscheduled)
}

func TestRejectCancelsWithReason(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.seedPatient(t, "Paul", "paul@example.test")
	doctorUID := env.seedDoctor(t, "Dr Rakoto", "rakoto@example.test")

	appt, err := env.appointments.Book(ctx, p, doctorUID, "2024-01-01", "10:00")
	require.NoError(t, err)
	require.NoError(t, env.appointments.Reject(ctx, appt.ID, "indisponible"))

	mine, err := env.appointments.ForPatient(ctx, p)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.AppointmentStatusCancelled, mine[0].Status)
	assert.Equal(t, "indisponible", mine[0].CancelReason)

	queue, err := env.appointments.PendingForDoctor(ctx, doctorUID)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestRejectUnknownAppointment(t *testing.T) {
	env := newTestEnv()
	err := env.appointments.Reject(context.Background(), primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

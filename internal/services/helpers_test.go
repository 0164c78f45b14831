package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/store"
)

// recordingSender captures outbound emails and can simulate delivery
// failures for chosen recipients.
type recordingSender struct {
	mu     sync.Mutex
	sent   []Email
	failTo map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTo[msg.To] {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) all() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Email(nil), r.sent...)
}

func (r *recordingSender) to(addr string) []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Email
	for _, msg := range r.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

type testEnv struct {
	store        *store.Memory
	sender       *recordingSender
	doctors      *DoctorService
	appointments *AppointmentService
}

func newTestEnv() *testEnv {
	st := store.NewMemory()
	sender := &recordingSender{failTo: map[string]bool{}}
	notifier := NewNotifier(sender, zerolog.Nop())
	return &testEnv{
		store:        st,
		sender:       sender,
		doctors:      NewDoctorService(st, notifier, zerolog.Nop()),
		appointments: NewAppointmentService(st, notifier, zerolog.Nop()),
	}
}

func (e *testEnv) seedPatient(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      models.RolePatient,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.InsertUser(context.Background(), user))
	return user.ID
}

// seedDoctor registers a doctor candidate: a doctor_pending user plus a
// pending registration record, as RegisterUser does.
func (e *testEnv) seedDoctor(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      models.RoleDoctorPending,
		CreatedAt: now,
	}
	require.NoError(t, e.store.InsertUser(context.Background(), user))
	doctor := &models.Doctor{
		UserID:    user.ID,
		Name:      name,
		Email:     email,
		Specialty: "cardiologie",
		Status:    models.DoctorStatusPending,
		CreatedAt: now,
	}
	require.NoError(t, e.store.InsertDoctor(context.Background(), doctor))
	return user.ID
}

func (e *testEnv) seedAdmin(t *testing.T) primitive.ObjectID {
	t.Helper()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      "Admin",
		Email:     "admin@example.test",
		Role:      models.RoleAdmin,
		Admin:     true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.InsertUser(context.Background(), user))
	return user.ID
}

// approveDoctor shortcuts the admin decision for tests that need a bookable
// doctor.
func (e *testEnv) approveDoctor(t *testing.T, adminID, doctorUID primitive.ObjectID) {
	t.Helper()
	_, err := e.doctors.Decide(context.Background(), adminID, "Admin", doctorUID, models.DoctorStatusApproved, "")
	require.NoError(t, err)
}

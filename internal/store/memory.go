package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hrandria/hospital-api/internal/models"
)

// Memory is an in-process Store used by the test suites. It mirrors the Mongo
// semantics, including the transactional slot-conflict check, behind a mutex.
type Memory struct {
	mu           sync.Mutex
	users        map[primitive.ObjectID]models.User
	doctors      map[primitive.ObjectID]models.Doctor // keyed by the doctor's user id
	approvals    []models.Approval
	appointments map[primitive.ObjectID]models.Appointment
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[primitive.ObjectID]models.User),
		doctors:      make(map[primitive.ObjectID]models.Doctor),
		appointments: make(map[primitive.ObjectID]models.Appointment),
	}
}

// --- Users ---

func (m *Memory) InsertUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateUserName(_ context.Context, id primitive.ObjectID, name string) error {
	return m.mutateUser(id, func(u *models.User) { u.Name = name })
}

func (m *Memory) UpdateUserPhotoURL(_ context.Context, id primitive.ObjectID, url string) error {
	return m.mutateUser(id, func(u *models.User) { u.PhotoURL = url })
}

func (m *Memory) SetUserAdmin(_ context.Context, id primitive.ObjectID, admin bool) error {
	return m.mutateUser(id, func(u *models.User) { u.Admin = admin })
}

func (m *Memory) mutateUser(id primitive.ObjectID, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return nil
}

// --- Doctors ---

func (m *Memory) InsertDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[d.UserID]; ok {
		return ErrDuplicate
	}
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.doctors[d.UserID] = *d
	return nil
}

func (m *Memory) GetDoctorByUser(_ context.Context, userID primitive.ObjectID) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *Memory) ListDoctorsByStatus(_ context.Context, status string) ([]models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var doctors []models.Doctor
	for _, d := range m.doctors {
		if d.Status == status {
			doctors = append(doctors, d)
		}
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].Name < doctors[j].Name })
	return doctors, nil
}

func (m *Memory) DecideDoctor(_ context.Context, userID primitive.ObjectID, status, role string) (*models.Doctor, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[userID]
	if !ok {
		return nil, "", ErrNotFound
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, "", ErrNotFound
	}
	previous := d.Status
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	u.Role = role
	m.doctors[userID] = d
	m.users[userID] = u
	return &d, previous, nil
}

func (m *Memory) AppendApproval(_ context.Context, a *models.Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.approvals = append(m.approvals, *a)
	return nil
}

func (m *Memory) ListApprovals(_ context.Context, doctorUserID primitive.ObjectID, limit int64) ([]models.Approval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var approvals []models.Approval
	for _, a := range m.approvals {
		if a.DoctorID == doctorUserID {
			approvals = append(approvals, a)
		}
	}
	sort.Slice(approvals, func(i, j int) bool { return approvals[i].CreatedAt.After(approvals[j].CreatedAt) })
	if limit > 0 && int64(len(approvals)) > limit {
		approvals = approvals[:limit]
	}
	return approvals, nil
}

// --- Appointments ---

func (m *Memory) InsertAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) ListAppointmentsForPatient(_ context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var appointments []models.Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			appointments = append(appointments, a)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].CreatedAt.After(appointments[j].CreatedAt)
	})
	return appointments, nil
}

func (m *Memory) ListPendingForDoctor(_ context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var appointments []models.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Status == models.AppointmentStatusPending {
			appointments = append(appointments, a)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		ti, tj := appointments[i].ScheduledAt, appointments[j].ScheduledAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})
	return appointments, nil
}

func (m *Memory) ApproveAppointment(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if appt.ScheduledAt == nil {
		return nil, ErrUnscheduled
	}
	for _, other := range m.appointments {
		if other.ID != id &&
			other.DoctorID == appt.DoctorID &&
			other.Status == models.AppointmentStatusApproved &&
			other.ScheduledAt != nil && other.ScheduledAt.Equal(*appt.ScheduledAt) {
			return nil, ErrConflict
		}
	}
	appt.Status = models.AppointmentStatusApproved
	appt.UpdatedAt = time.Now().UTC()
	m.appointments[id] = appt
	return &appt, nil
}

func (m *Memory) CancelAppointment(_ context.Context, id primitive.ObjectID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.Status = models.AppointmentStatusCancelled
	if reason != "" {
		appt.CancelReason = reason
	}
	appt.UpdatedAt = time.Now().UTC()
	m.appointments[id] = appt
	return nil
}

func (m *Memory) ListDueReminders(_ context.Context, from, until time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []models.Appointment
	for _, a := range m.appointments {
		if a.Status != models.AppointmentStatusApproved || a.ReminderSent || a.ScheduledAt == nil {
			continue
		}
		if !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(until) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	return due, nil
}

func (m *Memory) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.ReminderSent = true
	appt.UpdatedAt = time.Now().UTC()
	m.appointments[id] = appt
	return nil
}

var _ Store = (*Memory)(nil)

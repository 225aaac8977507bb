// Package memory provides map-backed repositories. They serve as the
// injection point for tests and as a standalone demo backend; the
// atomicity contract matches the postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository"
	"github.com/clinicdesk/booking-api/pkg/interval"
)

type DoctorRepository struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]*model.Doctor
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *DoctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	if doctor.WorkStart == "" {
		doctor.WorkStart = model.DefaultWorkStart
	}
	if doctor.WorkEnd == "" {
		doctor.WorkEnd = model.DefaultWorkEnd
	}
	doctor.CreatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doctor
	r.doctors[doctor.ID] = &copied
	return nil
}

func (r *DoctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *doctor
	return &copied, nil
}

func (r *DoctorRepository) List(_ context.Context) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doctors := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		copied := *d
		doctors = append(doctors, &copied)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].Name < doctors[j].Name })
	return doctors, nil
}

// AppointmentRepository keeps appointments per doctor, each doctor
// guarded by its own mutex so that the conflict-check-and-insert is
// linearizable per doctor without serializing unrelated doctors.
type AppointmentRepository struct {
	mu    sync.Mutex // guards the books map only
	books map[uuid.UUID]*doctorBook
	byID  sync.Map // uuid.UUID -> *model.Appointment
}

type doctorBook struct {
	mu    sync.Mutex
	appts []*model.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{books: make(map[uuid.UUID]*doctorBook)}
}

func (r *AppointmentRepository) book(doctorID uuid.UUID) *doctorBook {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[doctorID]
	if !ok {
		b = &doctorBook{}
		r.books[doctorID] = b
	}
	return b
}

func (r *AppointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if v, ok := r.byID.Load(id); ok {
		copied := *v.(*model.Appointment)
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *AppointmentRepository) ListForDay(_ context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	b := r.book(doctorID)
	b.mu.Lock()
	defer b.mu.Unlock()

	var appts []*model.Appointment
	for _, a := range b.appts {
		if !a.StartTime.Before(dayStart) && a.StartTime.Before(dayEnd) {
			copied := *a
			appts = append(appts, &copied)
		}
	}
	sort.Slice(appts, func(i, j int) bool { return appts[i].StartTime.Before(appts[j].StartTime) })
	return appts, nil
}

func (r *AppointmentRepository) FindConflict(_ context.Context, doctorID uuid.UUID, start, end time.Time) (*model.Appointment, error) {
	b := r.book(doctorID)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findConflict(start, end), nil
}

func (b *doctorBook) findConflict(start, end time.Time) *model.Appointment {
	var first *model.Appointment
	for _, a := range b.appts {
		if interval.Overlaps(a.StartTime, a.EndTime, start, end) {
			if first == nil || a.StartTime.Before(first.StartTime) {
				first = a
			}
		}
	}
	if first == nil {
		return nil
	}
	copied := *first
	return &copied
}

// Insert checks for overlap and appends while holding the doctor's
// lock, so two racing inserts for the same interval cannot both pass
// the check.
func (r *AppointmentRepository) Insert(_ context.Context, appt *model.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = time.Now()

	b := r.book(appt.DoctorID)
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing := b.findConflict(appt.StartTime, appt.EndTime); existing != nil {
		return &repository.ConflictError{Existing: existing}
	}

	copied := *appt
	b.appts = append(b.appts, &copied)
	r.byID.Store(copied.ID, &copied)
	return nil
}

package create_reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
	roomRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/room"
	"github.com/m04kA/SMC-StudyRoomService/pkg/types"
)

// memStore хранилище в памяти; изоляцию транзакций обеспечивает serialTx
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	reservations []*domain.Reservation
	blackouts    []*domain.BlackoutWindow
	rooms        map[int64]*domain.Room
	facilities   map[int64]*domain.Facility
	locks        []string
	createErr    error
}

func newMemStore() *memStore {
	open := types.TimeString("09:00")
	closing := types.TimeString("22:00")
	library := &domain.Facility{ID: 1, Name: "Main Library", Address: "Campus 1"}

	return &memStore{
		nextID: 100,
		rooms: map[int64]*domain.Room{
			3: {ID: 3, FacilityID: 1, Name: "R-301", Floor: "3", Capacity: 6, OpenTime: &open, CloseTime: &closing, Facility: library},
			4: {ID: 4, FacilityID: 1, Name: "R-302", Floor: "3", Capacity: 4, Facility: library},
		},
		facilities: map[int64]*domain.Facility{
			1: library,
			2: {ID: 2, Name: "Engineering Hall", Address: "Campus 2"},
		},
	}
}

func (s *memStore) LockRoomDay(_ context.Context, roomID int64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, fmt.Sprintf("room:%d:%s", roomID, date.Format(domain.DateFormat)))
	return nil
}

func (s *memStore) LockStudentDay(_ context.Context, studentID int64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, fmt.Sprintf("student:%d:%s", studentID, date.Format(domain.DateFormat)))
	return nil
}

func (s *memStore) SumActiveCredits(_ context.Context, studentID int64, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.reservations {
		if r.StudentID == studentID && r.IsConfirmed() && domain.SameDate(r.Date, date) {
			total += r.Credits
		}
	}
	return total, nil
}

func (s *memStore) FindRoomOverlapping(_ context.Context, roomID int64, date, start, end time.Time) (*domain.Reservation, error) {
	return s.findOverlapping(func(r *domain.Reservation) bool { return r.RoomID == roomID }, date, start, end), nil
}

func (s *memStore) FindStudentOverlapping(_ context.Context, studentID int64, date, start, end time.Time) (*domain.Reservation, error) {
	return s.findOverlapping(func(r *domain.Reservation) bool { return r.StudentID == studentID }, date, start, end), nil
}

func (s *memStore) findOverlapping(owner func(*domain.Reservation) bool, date, start, end time.Time) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if owner(r) && r.IsConfirmed() && domain.SameDate(r.Date, date) && r.Overlaps(start, end) {
			return r
		}
	}
	return nil
}

func (s *memStore) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	s.reservations = append(s.reservations, res)
	return res, nil
}

func (s *memStore) GetByID(_ context.Context, roomID int64) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, roomRepo.ErrRoomNotFound
	}
	return room, nil
}

func (s *memStore) GetFacilityByID(_ context.Context, facilityID int64) (*domain.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	facility, ok := s.facilities[facilityID]
	if !ok {
		return nil, roomRepo.ErrFacilityNotFound
	}
	return facility, nil
}

func (s *memStore) confirmed() []*domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if r.IsConfirmed() {
			out = append(out, r)
		}
	}
	return out
}

// memBlackouts окна недоступности в памяти
type memBlackouts struct {
	windows []*domain.BlackoutWindow
}

func (b *memBlackouts) FindOverlapping(_ context.Context, roomID int64, date, start, end time.Time) (*domain.BlackoutWindow, error) {
	for _, w := range b.windows {
		if w.RoomID == roomID && domain.SameDate(w.Date, date) && w.Overlaps(start, end) {
			return w, nil
		}
	}
	return nil, nil
}

// serialTx выполняет транзакции строго по одной и откатывает вставки при ошибке
type serialTx struct {
	mu    sync.Mutex
	store *memStore
}

func (m *serialTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.mu.Lock()
	snapshot := append([]*domain.Reservation(nil), m.store.reservations...)
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.reservations = snapshot
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.ReservationConfirmed
	err    error
}

func (p *fakePublisher) PublishReservationConfirmed(_ context.Context, event eventbus.ReservationConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *fakeMetrics) RecordOutcome(_, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, result)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

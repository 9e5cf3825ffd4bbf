package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/facility-booking/internal/model"
	"github.com/iliyamo/facility-booking/internal/repository"
)

// In-memory stand-ins for the repository layer.  They reproduce the
// semantics the engine relies on: (nil, nil) for absent rows, the
// overlap re-check inside BookingStore.Create/Update, and half-open
// range counting.  All fakes are mutex-guarded because the engine runs
// its side effects on background goroutines.

type fakeBookingStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Booking

	// onGetByID, when set, intercepts lookups.  Used to simulate a
	// booking deleted between a sweep's listing and its reminder send.
	onGetByID func(id uint64) (*model.Booking, error)
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{rows: map[uint64]model.Booking{}}
}

func (s *fakeBookingStore) overlapsLocked(facilityID uint64, start, end time.Time, excludeID uint64) bool {
	for _, b := range s.rows {
		if b.FacilityID != facilityID || b.ID == excludeID {
			continue
		}
		if model.Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func (s *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsLocked(b.FacilityID, b.StartTime, b.EndTime, 0) {
		return repository.ErrOverlap
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	s.rows[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) Update(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[b.ID]; !ok {
		return nil
	}
	if s.overlapsLocked(b.FacilityID, b.StartTime, b.EndTime, b.ID) {
		return repository.ErrOverlap
	}
	b.UpdatedAt = time.Now().UTC()
	s.rows[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	if s.onGetByID != nil {
		return s.onGetByID(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *fakeBookingStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *fakeBookingStore) List(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.rows))
	for _, b := range s.rows {
		if f.ClientID != 0 && b.ClientID != f.ClientID {
			continue
		}
		if f.FacilityID != 0 && b.FacilityID != f.FacilityID {
			continue
		}
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBookingStore) HasConflict(_ context.Context, facilityID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapsLocked(facilityID, start, end, excludeID), nil
}

func (s *fakeBookingStore) CountInRange(_ context.Context, clientID, userID, facilityID uint64, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.rows {
		if b.ClientID != clientID || b.UserID != userID || b.FacilityID != facilityID {
			continue
		}
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			n++
		}
	}
	return n, nil
}

type fakeHistoryStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.BookingHistory
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{rows: map[uint64]model.BookingHistory{}}
}

func (s *fakeHistoryStore) Create(_ context.Context, h *model.BookingHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	h.ID = s.nextID
	h.CreatedAt = time.Now().UTC()
	h.UpdatedAt = h.CreatedAt
	s.rows[h.ID] = *h
	return nil
}

func (s *fakeHistoryStore) FindForBooking(_ context.Context, b *model.Booking) (*model.BookingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Back-reference match wins over tuple match.
	for _, h := range s.rows {
		if h.BookingID != nil && *h.BookingID == b.ID {
			h := h
			return &h, nil
		}
	}
	for _, h := range s.rows {
		if h.BookingID == nil && h.ClientID == b.ClientID && h.FacilityID == b.FacilityID &&
			h.UserID == b.UserID && h.StartTime.Equal(b.StartTime) && h.EndTime.Equal(b.EndTime) {
			h := h
			return &h, nil
		}
	}
	return nil, nil
}

func (s *fakeHistoryStore) GetByID(_ context.Context, id uint64) (*model.BookingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *fakeHistoryStore) MarkReminderSent(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if ok {
		h.ReminderSent = true
		s.rows[id] = h
	}
	return nil
}

func (s *fakeHistoryStore) Terminate(_ context.Context, id uint64, status string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[id]
	if ok {
		h.Status = status
		t := at.UTC()
		h.DeletedAt = &t
		s.rows[id] = h
	}
	return nil
}

func (s *fakeHistoryStore) AttachBookingID(_ context.Context, historyID, bookingID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.rows[historyID]
	if ok {
		h.BookingID = &bookingID
		s.rows[historyID] = h
	}
	return nil
}

func (s *fakeHistoryStore) ListOrphans(_ context.Context) ([]model.BookingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BookingHistory, 0)
	for _, h := range s.rows {
		if h.BookingID == nil && h.Status == model.HistoryStatusPending {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeHistoryStore) List(_ context.Context, f model.HistoryFilter) ([]model.BookingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BookingHistory, 0)
	for _, h := range s.rows {
		if f.ClientID != 0 && h.ClientID != f.ClientID {
			continue
		}
		if f.FacilityID != 0 && h.FacilityID != f.FacilityID {
			continue
		}
		if f.UserID != 0 && h.UserID != f.UserID {
			continue
		}
		if f.Status != "" && h.Status != f.Status {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

type fakeQuotaStore struct {
	mu    sync.Mutex
	rules map[[3]uint64]model.QuotaRule
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{rules: map[[3]uint64]model.QuotaRule{}}
}

func (s *fakeQuotaStore) put(r model.QuotaRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[[3]uint64{r.ClientID, r.UserID, r.FacilityID}] = r
}

func (s *fakeQuotaStore) Find(_ context.Context, clientID, userID, facilityID uint64) (*model.QuotaRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[[3]uint64{clientID, userID, facilityID}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

type fakeFacilityStore struct {
	mu   sync.Mutex
	rows map[uint64]model.Facility
}

func (s *fakeFacilityStore) GetByID(_ context.Context, id uint64) (*model.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

type fakeUserStore struct {
	mu   sync.Mutex
	rows map[uint64]model.User
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []model.BookingLog
}

func (s *fakeAuditStore) Insert(_ context.Context, e *model.BookingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uint64(len(s.entries) + 1)
	e.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *fakeAuditStore) List(_ context.Context, f model.LogFilter) ([]model.BookingLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BookingLog, 0)
	for _, e := range s.entries {
		if f.ClientID != 0 && e.ClientID != f.ClientID {
			continue
		}
		if f.UserID != 0 && e.UserID != f.UserID {
			continue
		}
		if f.FacilityID != 0 && e.FacilityID != f.FacilityID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeAuditStore) last() *model.BookingLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	e := s.entries[len(s.entries)-1]
	return &e
}

func (s *fakeAuditStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type sentMail struct {
	To      string
	Subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	ok   bool
	sent []sentMail
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, _ string, _ bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject})
	return n.ok
}

func (n *fakeNotifier) sendCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type publishedEvent struct {
	Event   string
	Payload any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *fakeBroadcaster) Publish(_ context.Context, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Event: event, Payload: payload})
	return nil
}

func (b *fakeBroadcaster) named(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// engineFixture wires a BookingService and Sweeper over fresh fakes,
// seeded with one client (1), one facility (1) and one user (1).
type engineFixture struct {
	svc        *BookingService
	sweeper    *Sweeper
	bookings   *fakeBookingStore
	history    *fakeHistoryStore
	quotas     *fakeQuotaStore
	facilities *fakeFacilityStore
	users      *fakeUserStore
	audit      *fakeAuditStore
	notifier   *fakeNotifier
	events     *fakeBroadcaster
}

func newEngineFixture(now time.Time) *engineFixture {
	f := &engineFixture{
		bookings: newFakeBookingStore(),
		history:  newFakeHistoryStore(),
		quotas:   newFakeQuotaStore(),
		facilities: &fakeFacilityStore{rows: map[uint64]model.Facility{
			1: {ID: 1, ClientID: 1, Name: "Court A"},
		}},
		users: &fakeUserStore{rows: map[uint64]model.User{
			1: {ID: 1, ClientID: 1, Name: "Dana", Email: "dana@example.com", Role: model.RoleMember},
		}},
		audit:    &fakeAuditStore{},
		notifier: &fakeNotifier{ok: true},
		events:   &fakeBroadcaster{},
	}
	f.svc = NewBookingService(
		f.bookings, f.history, NewQuotaResolver(f.quotas),
		f.facilities, f.users, f.audit, f.notifier, f.events,
	)
	f.svc.now = func() time.Time { return now }
	f.sweeper = NewSweeper(f.bookings, f.history, f.users, f.facilities, f.notifier)
	f.sweeper.now = func() time.Time { return now }
	return f
}

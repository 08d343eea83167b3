package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// memDB is an in-memory stand-in for the Postgres schema. Every method copies
// values in and out so callers never share pointers with the store.
type memDB struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]model.User
	slots      map[int64]model.WeeklySlot
	sessions   map[int64]model.ClassSession
	meetings   map[int64]model.MeetingRequest
	activities map[int64]model.Activity
	holidays   map[int64]model.Holiday
	events     []model.Event
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[int64]model.User{},
		slots:      map[int64]model.WeeklySlot{},
		sessions:   map[int64]model.ClassSession{},
		meetings:   map[int64]model.MeetingRequest{},
		activities: map[int64]model.Activity{},
		holidays:   map[int64]model.Holiday{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) repos() repository.Repositories {
	return repository.Repositories{
		Users:         memUsers{db},
		WeeklySlots:   memWeeklySlots{db},
		ClassSessions: memClassSessions{db},
		Meetings:      memMeetings{db},
		Activities:    memActivities{db},
		Holidays:      memHolidays{db},
		Outbox:        memOutbox{db},
	}
}

type memSnapshot struct {
	nextID     int64
	users      map[int64]model.User
	slots      map[int64]model.WeeklySlot
	sessions   map[int64]model.ClassSession
	meetings   map[int64]model.MeetingRequest
	activities map[int64]model.Activity
	holidays   map[int64]model.Holiday
	events     []model.Event
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		nextID:     db.nextID,
		users:      cloneMap(db.users),
		slots:      cloneMap(db.slots),
		sessions:   cloneMap(db.sessions),
		meetings:   cloneMap(db.meetings),
		activities: cloneMap(db.activities),
		holidays:   cloneMap(db.holidays),
		events:     append([]model.Event(nil), db.events...),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID = s.nextID
	db.users, db.slots, db.sessions = s.users, s.slots, s.sessions
	db.meetings, db.activities, db.holidays = s.meetings, s.activities, s.holidays
	db.events = s.events
}

func (db *memDB) eventsOfType(t model.EventType) []model.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.Event
	for _, e := range db.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// memTxManager serialises all transactions and rolls the whole store back
// when fn fails.
type memTxManager struct {
	db *memDB
	mu sync.Mutex

	lockedMu sync.Mutex
	locked   []int64
}

func (m *memTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.db.snapshot()
	if err := fn(ctx, m.db.repos()); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}

func (m *memTxManager) WithFacultyLock(ctx context.Context, facultyID int64, fn func(ctx context.Context, repos repository.Repositories) error) error {
	m.lockedMu.Lock()
	m.locked = append(m.locked, facultyID)
	m.lockedMu.Unlock()
	return m.WithTx(ctx, fn)
}

func overlaps(start, end, from, to time.Time) bool {
	return start.Before(to) && end.After(from)
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u.ID = r.db.id()
	r.db.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, _ := r.GetByID(ctx, id); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUsers) filter(keep func(model.User) bool) []*model.User {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.User
	for _, u := range r.db.users {
		if keep(u) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memUsers) ListByGroup(_ context.Context, groupID uuid.UUID) ([]*model.User, error) {
	return r.filter(func(u model.User) bool { return u.GroupID != nil && *u.GroupID == groupID }), nil
}

func (r memUsers) ListFaculty(context.Context) ([]*model.User, error) {
	return r.filter(func(u model.User) bool { return u.IsFaculty() }), nil
}

func (r memUsers) update(id int64, fn func(*model.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return model.NotFoundError("user", id)
	}
	fn(&u)
	r.db.users[id] = u
	return nil
}

func (r memUsers) Update(_ context.Context, user *model.User) error {
	return r.update(user.ID, func(u *model.User) {
		u.Username, u.FirstName, u.LastName, u.LanguageCode = user.Username, user.FirstName, user.LastName, user.LanguageCode
	})
}

func (r memUsers) UpdateRole(_ context.Context, id int64, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

func (r memUsers) UpdateGroup(_ context.Context, id int64, groupID uuid.UUID) error {
	return r.update(id, func(u *model.User) { u.GroupID = &groupID })
}

type memWeeklySlots struct{ db *memDB }

func (r memWeeklySlots) Upsert(_ context.Context, slot *model.WeeklySlot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, existing := range r.db.slots {
		if existing.FacultyID == slot.FacultyID && existing.Key() == slot.Key() {
			slot.ID = id
			r.db.slots[id] = *slot
			return nil
		}
	}
	slot.ID = r.db.id()
	r.db.slots[slot.ID] = *slot
	return nil
}

func (r memWeeklySlots) GetByID(_ context.Context, id int64) (*model.WeeklySlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memWeeklySlots) ListByFaculty(_ context.Context, facultyID int64) ([]*model.WeeklySlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.WeeklySlot
	for _, s := range r.db.slots {
		if s.FacultyID == facultyID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memWeeklySlots) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.slots[id]; !ok {
		return model.NotFoundError(model.EntityWeeklySlot, id)
	}
	delete(r.db.slots, id)
	return nil
}

type memClassSessions struct{ db *memDB }

func (r memClassSessions) Create(_ context.Context, s *model.ClassSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s.ID = r.db.id()
	r.db.sessions[s.ID] = *s
	return nil
}

func (r memClassSessions) InsertGenerated(_ context.Context, sessions []*model.ClassSession) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var inserted int64
next:
	for _, s := range sessions {
		for _, existing := range r.db.sessions {
			if existing.FacultyID == s.FacultyID && existing.WeeklySlotID != nil && s.WeeklySlotID != nil &&
				*existing.WeeklySlotID == *s.WeeklySlotID && existing.StartTime.Equal(s.StartTime) {
				continue next
			}
		}
		s.ID = r.db.id()
		r.db.sessions[s.ID] = *s
		inserted++
	}
	return inserted, nil
}

func (r memClassSessions) GetByID(_ context.Context, id int64) (*model.ClassSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memClassSessions) filter(from, to time.Time, keep func(model.ClassSession) bool) []*model.ClassSession {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.ClassSession
	for _, s := range r.db.sessions {
		if !keep(s) {
			continue
		}
		iv := s.Interval()
		hit := overlaps(iv.Start, iv.End, from, to)
		if s.RescheduledTo != nil {
			hit = hit || overlaps(*s.RescheduledTo, s.RescheduledTo.Add(s.Duration()), from, to)
		}
		if hit {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memClassSessions) ListByFaculty(_ context.Context, facultyID int64, from, to time.Time) ([]*model.ClassSession, error) {
	return r.filter(from, to, func(s model.ClassSession) bool { return s.FacultyID == facultyID }), nil
}

func (r memClassSessions) ListByGroup(_ context.Context, groupID uuid.UUID, from, to time.Time) ([]*model.ClassSession, error) {
	return r.filter(from, to, func(s model.ClassSession) bool { return s.GroupID == groupID }), nil
}

func (r memClassSessions) ListGrouped(_ context.Context, from, to time.Time) ([]*model.ClassSession, error) {
	return r.filter(from, to, func(s model.ClassSession) bool {
		return s.GroupID != uuid.Nil && s.Status != model.ClassStatusCancelled
	}), nil
}

func (r memClassSessions) UpdateStatus(_ context.Context, s *model.ClassSession, from model.ClassStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.sessions[s.ID]
	if !ok || stored.Status != from {
		return model.ErrStaleState
	}
	stored.Status, stored.RescheduledTo, stored.Notes = s.Status, s.RescheduledTo, s.Notes
	r.db.sessions[s.ID] = stored
	return nil
}

type memMeetings struct{ db *memDB }

func (r memMeetings) Create(_ context.Context, m *model.MeetingRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m.ID = r.db.id()
	r.db.meetings[m.ID] = *m
	return nil
}

func (r memMeetings) GetByID(_ context.Context, id int64) (*model.MeetingRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.meetings[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r memMeetings) filter(keep func(model.MeetingRequest) bool) []*model.MeetingRequest {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.MeetingRequest
	for _, m := range r.db.meetings {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memMeetings) ListOccupying(_ context.Context, facultyID int64, from, to time.Time) ([]*model.MeetingRequest, error) {
	return r.filter(func(m model.MeetingRequest) bool {
		iv := m.Interval()
		return m.FacultyID == facultyID && m.Status.OccupiesTime() && overlaps(iv.Start, iv.End, from, to)
	}), nil
}

func (r memMeetings) ListByFaculty(_ context.Context, facultyID int64, statuses ...model.MeetingStatus) ([]*model.MeetingRequest, error) {
	return r.filter(func(m model.MeetingRequest) bool {
		if m.FacultyID != facultyID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if m.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r memMeetings) ListByStudent(_ context.Context, studentID int64) ([]*model.MeetingRequest, error) {
	return r.filter(func(m model.MeetingRequest) bool { return m.StudentID == studentID }), nil
}

func (r memMeetings) UpdateStatus(_ context.Context, m *model.MeetingRequest, from model.MeetingStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.meetings[m.ID]
	if !ok || stored.Status != from {
		return model.ErrStaleState
	}
	stored.Status, stored.ResponseMessage = m.Status, m.ResponseMessage
	r.db.meetings[m.ID] = stored
	return nil
}

type memActivities struct{ db *memDB }

func (r memActivities) Create(_ context.Context, a *model.Activity) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a.ID = r.db.id()
	r.db.activities[a.ID] = *a
	return nil
}

func (r memActivities) GetByID(_ context.Context, id int64) (*model.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.activities[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r memActivities) ListByFaculty(_ context.Context, facultyID int64, from, to time.Time) ([]*model.Activity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.Activity
	for _, a := range r.db.activities {
		if a.FacultyID == facultyID && overlaps(a.StartTime, a.EndTime, from, to) {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memActivities) Update(_ context.Context, a *model.Activity) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.activities[a.ID]; !ok {
		return model.NotFoundError(model.EntityActivity, a.ID)
	}
	r.db.activities[a.ID] = *a
	return nil
}

func (r memActivities) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.activities[id]; !ok {
		return model.NotFoundError(model.EntityActivity, id)
	}
	delete(r.db.activities, id)
	return nil
}

type memHolidays struct{ db *memDB }

func (r memHolidays) Create(_ context.Context, h *model.Holiday) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h.ID = r.db.id()
	r.db.holidays[h.ID] = *h
	return nil
}

func (r memHolidays) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.holidays[id]; !ok {
		return model.NotFoundError(model.EntityHoliday, id)
	}
	delete(r.db.holidays, id)
	return nil
}

func (r memHolidays) List(context.Context) ([]*model.Holiday, error) {
	return r.ListForRange(context.Background(), model.DateRange{})
}

func (r memHolidays) ListForRange(_ context.Context, rng model.DateRange) ([]*model.Holiday, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.Holiday
	for _, h := range r.db.holidays {
		if rng.From.IsZero() || h.IsRecurring || rng.Contains(h.Date) {
			h := h
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memOutbox struct{ db *memDB }

func (r memOutbox) Insert(_ context.Context, event model.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.events = append(r.db.events, event)
	return nil
}

func (r memOutbox) FetchUnpublished(_ context.Context, limit int) ([]model.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Event
	for _, e := range r.db.events {
		if e.PublishedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memOutbox) MarkPublished(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for i := range r.db.events {
		if r.db.events[i].ID == id {
			r.db.events[i].PublishedAt = &now
		}
	}
	return nil
}

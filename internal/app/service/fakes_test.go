package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventhub/internal/common"
	"eventhub/internal/domain/model"
)

// In-memory repository fakes. WithTx serializes callers with a mutex so the
// concurrent registration tests exercise the same check-then-write
// atomicity the real store provides.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []model.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*model.Event
}

func newFakeEventRepo(events ...*model.Event) *fakeEventRepo {
	r := &fakeEventRepo{}
	for _, e := range events {
		cp := *e
		r.events = append(r.events, &cp)
	}
	return r
}

func (r *fakeEventRepo) Create(ctx context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Slug == event.Slug {
			return common.ErrConflict
		}
	}
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeEventRepo) Update(ctx context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == event.ID {
			cp := *event
			r.events[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeEventRepo) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeEventRepo) List(ctx context.Context) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]model.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, *e)
	}
	return events, nil
}

func (r *fakeEventRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), nil
}

type fakeRegRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	users  map[string]*model.User
	regs   []*model.Registration
}

func newFakeRegRepo() *fakeRegRepo {
	return &fakeRegRepo{
		events: make(map[string]*model.Event),
		users:  make(map[string]*model.User),
	}
}

func (r *fakeRegRepo) addEvent(e *model.Event) {
	cp := *e
	r.events[e.ID] = &cp
}

func (r *fakeRegRepo) addUser(u *model.User) {
	cp := *u
	r.users[u.ID] = &cp
}

func (r *fakeRegRepo) addRegistration(reg *model.Registration) {
	cp := *reg
	r.regs = append(r.regs, &cp)
}

// WithTx serializes transactions; the inner methods assume the caller holds
// the transaction.
func (r *fakeRegRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeRegRepo) FindEventForUpdate(ctx context.Context, eventID string) (*model.Event, error) {
	e, ok := r.events[eventID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRegRepo) CountForEvent(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegRepo) Create(ctx context.Context, reg *model.Registration) error {
	for _, existing := range r.regs {
		if existing.UserID == reg.UserID && existing.EventID == reg.EventID {
			return common.ErrConflict
		}
	}
	cp := *reg
	r.regs = append(r.regs, &cp)
	return nil
}

func (r *fakeRegRepo) find(id string) (*model.Registration, bool) {
	for _, reg := range r.regs {
		if reg.ID == id {
			return reg, true
		}
	}
	return nil, false
}

func (r *fakeRegRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, *model.Event, error) {
	reg, ok := r.find(id)
	if !ok {
		return nil, nil, common.ErrNotFound
	}
	event, ok := r.events[reg.EventID]
	if !ok {
		return nil, nil, common.ErrNotFound
	}
	regCp, eventCp := *reg, *event
	return &regCp, &eventCp, nil
}

func (r *fakeRegRepo) SetCheckIn(ctx context.Context, id string, checkedIn bool, checkedInAt *time.Time) error {
	reg, ok := r.find(id)
	if !ok {
		return common.ErrNotFound
	}
	reg.CheckedIn = checkedIn
	reg.CheckedInAt = checkedInAt
	return nil
}

func (r *fakeRegRepo) Delete(ctx context.Context, id string) error {
	for i, reg := range r.regs {
		if reg.ID == id {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeRegRepo) summaryFor(eventID string) model.EventSummary {
	e := r.events[eventID]
	return model.EventSummary{
		ID:       e.ID,
		Title:    e.Title,
		Slug:     e.Slug,
		Location: e.Location,
		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,
	}
}

func (r *fakeRegRepo) ListByUser(ctx context.Context, userID string) ([]model.UserRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.UserRegistration
	for _, reg := range r.regs {
		if reg.UserID == userID {
			out = append(out, model.UserRegistration{Registration: *reg, Event: r.summaryFor(reg.EventID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRegRepo) ListByEvent(ctx context.Context, eventID string) ([]model.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EventRegistration
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			er := model.EventRegistration{Registration: *reg}
			if u, ok := r.users[reg.UserID]; ok {
				er.UserFirstName = u.FirstName
				er.UserLastName = u.LastName
				er.UserEmail = u.Email
			}
			out = append(out, er)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRegRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs), nil
}

func (r *fakeRegRepo) CountCheckedIn(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, reg := range r.regs {
		if reg.CheckedIn {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegRepo) MostPopularEvent(ctx context.Context) (*model.PopularEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, reg := range r.regs {
		counts[reg.EventID]++
	}
	var best *model.PopularEvent
	for eventID, count := range counts {
		e := r.events[eventID]
		if best == nil ||
			count > best.Registrations ||
			(count == best.Registrations && e.CreatedAt.Before(r.events[best.Event.ID].CreatedAt)) {
			best = &model.PopularEvent{Event: r.summaryFor(eventID), Registrations: count}
		}
	}
	return best, nil
}

func (r *fakeRegRepo) ListRecent(ctx context.Context, limit int) ([]model.RecentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := make([]*model.Registration, len(r.regs))
	copy(regs, r.regs)
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })
	if len(regs) > limit {
		regs = regs[:limit]
	}
	var out []model.RecentRegistration
	for _, reg := range regs {
		rr := model.RecentRegistration{Registration: *reg, Event: r.summaryFor(reg.EventID)}
		if u, ok := r.users[reg.UserID]; ok {
			rr.UserFirstName = u.FirstName
			rr.UserLastName = u.LastName
			rr.UserEmail = u.Email
		}
		out = append(out, rr)
	}
	return out, nil
}

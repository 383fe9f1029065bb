package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/eventlink/eventlink/internal/eventlink"
)

// memRepo is an in-memory Repository for exercising the engine and
// approver without a database.
type memRepo struct {
	events  map[string]*eventlink.Event // by id
	changes map[string]*eventlink.ChangeEntry
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		events:  map[string]*eventlink.Event{},
		changes: map[string]*eventlink.ChangeEntry{},
	}
}

func (m *memRepo) id(ns string) string {
	m.nextID++
	return fmt.Sprintf("%d%s", m.nextID, ns)
}

func (m *memRepo) InTx(ctx context.Context, fn func(eventlink.Repository) error) error {
	return fn(m)
}

func (m *memRepo) Event(ctx context.Context, id string) (eventlink.Event, error) {
	evt, ok := m.events[id]
	if !ok {
		return eventlink.Event{}, eventlink.ErrNotFound
	}
	return *evt, nil
}

func (m *memRepo) EventByCode(ctx context.Context, code string) (eventlink.Event, error) {
	for _, evt := range m.events {
		if evt.Code == code {
			return *evt, nil
		}
	}
	return eventlink.Event{}, eventlink.ErrNotFound
}

func (m *memRepo) InsertEvent(ctx context.Context, event eventlink.Event) (eventlink.Event, error) {
	event.ID = m.id("-evt")
	event.CreatedAt = time.Now()
	m.events[event.ID] = &event
	return event, nil
}

func (m *memRepo) UpdateEventField(ctx context.Context, id string, field eventlink.FieldKind, value *string) error {
	evt, ok := m.events[id]
	if !ok {
		return eventlink.ErrNotFound
	}
	switch field {
	case eventlink.FieldDate:
		evt.Date = value
	case eventlink.FieldLocation:
		evt.Location = value
	case eventlink.FieldName:
		if value != nil {
			evt.Name = *value
		} else {
			evt.Name = ""
		}
	}
	return nil
}

func (m *memRepo) AppendChange(ctx context.Context, entry eventlink.ChangeEntry) (eventlink.ChangeEntry, error) {
	if _, ok := m.events[entry.EventID]; !ok {
		return eventlink.ChangeEntry{}, eventlink.ErrNotFound
	}
	entry.ID = m.id("-chg")
	entry.CreatedAt = time.Now()
	m.changes[entry.ID] = &entry
	return entry, nil
}

func (m *memRepo) Change(ctx context.Context, id string) (eventlink.ChangeEntry, error) {
	entry, ok := m.changes[id]
	if !ok {
		return eventlink.ChangeEntry{}, eventlink.ErrNotFound
	}
	return *entry, nil
}

func (m *memRepo) SetChangeState(ctx context.Context, id string, state eventlink.ChangeState) error {
	entry, ok := m.changes[id]
	if !ok {
		return eventlink.ErrNotFound
	}
	entry.State = state
	return nil
}

func (m *memRepo) PendingChanges(ctx context.Context) ([]eventlink.PendingChange, error) {
	var out []eventlink.PendingChange
	for _, entry := range m.changes {
		if entry.State != eventlink.ChangePending {
			continue
		}
		evt := m.events[entry.EventID]
		out = append(out, eventlink.PendingChange{
			ChangeEntry: *entry,
			EventCode:   evt.Code,
			EventName:   evt.Name,
		})
	}
	return out, nil
}

// The engine and approver never touch search, websites, or users.

func (m *memRepo) SearchEvents(context.Context, string) ([]eventlink.Event, error) {
	panic("not implemented")
}

func (m *memRepo) UpcomingEvents(context.Context, string) ([]eventlink.UpcomingEvent, error) {
	panic("not implemented")
}

func (m *memRepo) Website(context.Context, string) (eventlink.Website, error) {
	panic("not implemented")
}

func (m *memRepo) ActiveWebsites(context.Context) ([]eventlink.Website, error) {
	panic("not implemented")
}

func (m *memRepo) SearchWebsites(context.Context, string, string) ([]eventlink.Website, error) {
	panic("not implemented")
}

func (m *memRepo) InsertWebsite(context.Context, eventlink.Website) (eventlink.Website, error) {
	panic("not implemented")
}

func (m *memRepo) UpdateWebsite(context.Context, eventlink.Website) error {
	panic("not implemented")
}

func (m *memRepo) DeleteWebsite(context.Context, string) error {
	panic("not implemented")
}

func (m *memRepo) LinkEvent(context.Context, eventlink.WebsiteLink) (eventlink.WebsiteLink, error) {
	panic("not implemented")
}

func (m *memRepo) WebsitesForEvent(context.Context, string) ([]eventlink.LinkedWebsite, error) {
	panic("not implemented")
}

func (m *memRepo) User(context.Context, string) (eventlink.User, error) {
	panic("not implemented")
}

func (m *memRepo) UserByUsername(context.Context, string) (eventlink.User, error) {
	panic("not implemented")
}

func (m *memRepo) AllUsers(context.Context) ([]eventlink.User, error) {
	panic("not implemented")
}

func (m *memRepo) InsertUser(context.Context, eventlink.User) (eventlink.User, error) {
	panic("not implemented")
}

func (m *memRepo) UpdateUser(context.Context, eventlink.User) error {
	panic("not implemented")
}

func (m *memRepo) DeleteUser(context.Context, string) error {
	panic("not implemented")
}

var _ eventlink.Repository = (*memRepo)(nil)

package api

import (
	"context"
	"testing"

	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/recon"
	"github.com/eventlink/eventlink/internal/sync"
)

// fakeRepo overrides just what each test needs; anything else panics via
// the embedded nil interface.
type fakeRepo struct {
	eventlink.Repository

	usersByName map[string]eventlink.User
	events      map[string]eventlink.Event
	changes     map[string]eventlink.ChangeEntry
	websites    map[string]eventlink.Website // by code
}

func (f *fakeRepo) UserByUsername(_ context.Context, username string) (eventlink.User, error) {
	usr, ok := f.usersByName[username]
	if !ok {
		return eventlink.User{}, eventlink.ErrNotFound
	}
	return usr, nil
}

func (f *fakeRepo) Event(_ context.Context, id string) (eventlink.Event, error) {
	evt, ok := f.events[id]
	if !ok {
		return eventlink.Event{}, eventlink.ErrNotFound
	}
	return evt, nil
}

func (f *fakeRepo) Change(_ context.Context, id string) (eventlink.ChangeEntry, error) {
	entry, ok := f.changes[id]
	if !ok {
		return eventlink.ChangeEntry{}, eventlink.ErrNotFound
	}
	return entry, nil
}

func (f *fakeRepo) UpdateEventField(_ context.Context, id string, field eventlink.FieldKind, value *string) error {
	evt, ok := f.events[id]
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
		}
	}
	f.events[id] = evt
	return nil
}

func (f *fakeRepo) SetChangeState(_ context.Context, id string, state eventlink.ChangeState) error {
	entry, ok := f.changes[id]
	if !ok {
		return eventlink.ErrNotFound
	}
	entry.State = state
	f.changes[id] = entry
	return nil
}

func (f *fakeRepo) AllUsers(context.Context) ([]eventlink.User, error) {
	users := make([]eventlink.User, 0, len(f.usersByName))
	for _, usr := range f.usersByName {
		users = append(users, usr)
	}
	return users, nil
}

func (f *fakeRepo) InsertWebsite(_ context.Context, site eventlink.Website) (eventlink.Website, error) {
	if _, ok := f.websites[site.Code]; ok {
		return eventlink.Website{}, eventlink.ErrConflict
	}
	site.ID = site.Code + "-web"
	f.websites[site.Code] = site
	return site, nil
}

func (f *fakeRepo) InTx(_ context.Context, fn func(eventlink.Repository) error) error {
	return fn(f)
}

func newTestServer(t *testing.T, repo *fakeRepo) *Server {
	t.Helper()

	if repo.usersByName == nil {
		repo.usersByName = map[string]eventlink.User{}
	}
	if repo.events == nil {
		repo.events = map[string]eventlink.Event{}
	}
	if repo.changes == nil {
		repo.changes = map[string]eventlink.ChangeEntry{}
	}
	if repo.websites == nil {
		repo.websites = map[string]eventlink.Website{}
	}

	cache, _ := lru.New[string, eventlink.Event](16)

	return &Server{
		repo:           repo,
		engine:         sync.NewEngine(repo),
		approver:       sync.NewApprover(repo),
		recon:          recon.Engine{},
		eventRespCache: cache,
		secureCookie:   securecookie.New([]byte("0123456789abcdef0123456789abcdef"), nil),
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("error hashing password: %s", err)
	}

	return string(hashed)
}

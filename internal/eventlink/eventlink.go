// Package eventlink holds the domain types shared across the application:
// canonical events, staged field changes, partner websites, and the
// repository surface that backs them.
package eventlink

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConflict       = errors.New("resource already exists")
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrRemoteRejected = errors.New("partner website rejected the request")
)

type (
	// Event is the canonical record of a named occurrence. Its code is
	// stable and unique; every other field may drift against what the
	// partner websites publish.
	Event struct {
		ID         string    `db:"id"`
		Code       string    `db:"code"`
		Name       string    `db:"name"`
		Date       *string   `db:"date"`
		Location   *string   `db:"location"`
		Link       *string   `db:"link"`
		Image      *string   `db:"image"`
		HoverImage *string   `db:"hover_image"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}

	// ChangeEntry is a staged, individually-approvable edit to one field
	// of one event. Entries are append-only: they move from Pending to a
	// terminal state exactly once and are never deleted.
	ChangeEntry struct {
		ID        string      `db:"id"`
		EventID   string      `db:"event_id"`
		Field     FieldKind   `db:"field"`
		OldValue  *string     `db:"old_value"`
		NewValue  *string     `db:"new_value"`
		State     ChangeState `db:"state"`
		CreatedAt time.Time   `db:"created_at"`
	}

	// PendingChange is a change entry joined with its target event for
	// the approval queue listing.
	PendingChange struct {
		ChangeEntry

		EventCode string `db:"event_code"`
		EventName string `db:"event_name"`
	}

	// Website is a partner site with its own event listing API.
	Website struct {
		ID        string    `db:"id"`
		Code      string    `db:"code"`
		BaseURL   string    `db:"base_url"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	// WebsiteLink ties an event to a partner website's listing of it.
	WebsiteLink struct {
		ID        string    `db:"id"`
		WebsiteID string    `db:"website_id"`
		EventID   string    `db:"event_id"`
		EventLink *string   `db:"event_link"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}

	// LinkedWebsite is a website joined with its link row for one event.
	LinkedWebsite struct {
		Website

		LinkID     string  `db:"link_id"`
		LinkStatus string  `db:"link_status"`
		EventLink  *string `db:"event_link"`
	}

	// User is an operator account for the admin tool.
	User struct {
		ID        string    `db:"id"`
		Username  string    `db:"username"`
		Password  string    `db:"password" json:"-"`
		Email     string    `db:"email"`
		Role      Role      `db:"role"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

// FieldKind names the event field a change entry targets.
type FieldKind string

const (
	FieldDate     FieldKind = "Date"
	FieldLocation FieldKind = "Location"
	FieldName     FieldKind = "Name"
	FieldOther    FieldKind = "Other"
)

// ChangeState is the lifecycle state of a change entry.
type ChangeState string

const (
	ChangePending  ChangeState = "Pending"
	ChangeApproved ChangeState = "Approved"
	ChangeRejected ChangeState = "Rejected"
)

// Terminal reports whether the state can no longer transition.
func (s ChangeState) Terminal() bool {
	return s == ChangeApproved || s == ChangeRejected
}

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
)

// Website statuses. Only active websites are targeted by reconciliation.
const (
	WebsiteActive   = "Active"
	WebsiteInactive = "Inactive"
)

type (
	EventService interface {
		Event(ctx context.Context, id string) (Event, error)
		EventByCode(ctx context.Context, code string) (Event, error)
		InsertEvent(ctx context.Context, event Event) (Event, error)
		UpdateEventField(ctx context.Context, id string, field FieldKind, value *string) error
		SearchEvents(ctx context.Context, term string) ([]Event, error)
		UpcomingEvents(ctx context.Context, onOrAfter string) ([]UpcomingEvent, error)
	}

	ChangeService interface {
		AppendChange(ctx context.Context, entry ChangeEntry) (ChangeEntry, error)
		Change(ctx context.Context, id string) (ChangeEntry, error)
		SetChangeState(ctx context.Context, id string, state ChangeState) error
		PendingChanges(ctx context.Context) ([]PendingChange, error)
	}

	WebsiteService interface {
		Website(ctx context.Context, id string) (Website, error)
		ActiveWebsites(ctx context.Context) ([]Website, error)
		SearchWebsites(ctx context.Context, term, status string) ([]Website, error)
		InsertWebsite(ctx context.Context, site Website) (Website, error)
		UpdateWebsite(ctx context.Context, site Website) error
		DeleteWebsite(ctx context.Context, id string) error
		LinkEvent(ctx context.Context, link WebsiteLink) (WebsiteLink, error)
		WebsitesForEvent(ctx context.Context, eventCode string) ([]LinkedWebsite, error)
	}

	UserService interface {
		User(ctx context.Context, id string) (User, error)
		UserByUsername(ctx context.Context, username string) (User, error)
		AllUsers(ctx context.Context) ([]User, error)
		InsertUser(ctx context.Context, usr User) (User, error)
		UpdateUser(ctx context.Context, usr User) error
		DeleteUser(ctx context.Context, id string) error
	}

	// Repository is the full persistence surface. InTx runs fn against a
	// repository bound to a single transaction, committing when fn
	// returns nil.
	Repository interface {
		EventService
		ChangeService
		WebsiteService
		UserService

		InTx(ctx context.Context, fn func(Repository) error) error
	}
)

// UpcomingEvent is an event joined with its count of pending changes, for
// the dashboard listing.
type UpcomingEvent struct {
	Event

	PendingChanges int `db:"pending_changes"`
}

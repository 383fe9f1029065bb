package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/eventlink/eventlink/internal/eventlink"
)

const eventNamespace = "-evt"

// Code for a unique constraint violation in the modernc driver.
const sqliteUniqueViolation = 2067

func (r Repo) Event(ctx context.Context, id string) (eventlink.Event, error) {
	const q = `SELECT * FROM events WHERE id = ?;`

	var event eventlink.Event
	err := r.q.GetContext(ctx, &event, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.Event{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.Event{}, fmt.Errorf("error fetching event: %s", err)
	}

	return event, nil
}

func (r Repo) EventByCode(ctx context.Context, code string) (eventlink.Event, error) {
	const q = `SELECT * FROM events WHERE code = ?;`

	var event eventlink.Event
	err := r.q.GetContext(ctx, &event, q, code)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.Event{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.Event{}, fmt.Errorf("error fetching event by code: %s", err)
	}

	return event, nil
}

func (r Repo) InsertEvent(ctx context.Context, event eventlink.Event) (eventlink.Event, error) {
	const q = `INSERT INTO events (id, code, name, date, location, link, image, hover_image)
	VALUES (:id, :code, :name, :date, :location, :link, :image, :hover_image);`

	event.ID = uuid.NewString() + eventNamespace
	_, err := r.q.NamedExecContext(ctx, q, event)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteUniqueViolation {
		return eventlink.Event{}, fmt.Errorf("event %q already exists: %w", event.Code, eventlink.ErrConflict)
	}
	if err != nil {
		return eventlink.Event{}, fmt.Errorf("error inserting event: %s", err)
	}

	return r.Event(ctx, event.ID)
}

// Columns that change entries are allowed to target.
var fieldColumns = map[eventlink.FieldKind]string{
	eventlink.FieldDate:     "date",
	eventlink.FieldLocation: "location",
	eventlink.FieldName:     "name",
}

func (r Repo) UpdateEventField(ctx context.Context, id string, field eventlink.FieldKind, value *string) error {
	col, ok := fieldColumns[field]
	if !ok {
		// "Other" changes carry no applicable column.
		return nil
	}

	query, args, err := sq.Update("events").
		Set(col, value).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating event field: %s", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eventlink.ErrNotFound
	}

	return nil
}

func (r Repo) SearchEvents(ctx context.Context, term string) ([]eventlink.Event, error) {
	q := sq.Select("*").From("events")
	if term != "" {
		pattern := "%" + term + "%"
		q = q.Where(sq.Or{
			sq.Like{"code": pattern},
			sq.Like{"name": pattern},
		})
	}
	q = q.OrderBy("date DESC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var events []eventlink.Event
	if err := r.q.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("error searching events: %s", err)
	}

	return events, nil
}

// UpcomingEvents lists events dated on or after the given day, each with
// its count of changes still awaiting a decision.
func (r Repo) UpcomingEvents(ctx context.Context, onOrAfter string) ([]eventlink.UpcomingEvent, error) {
	const q = `SELECT e.*,
		(SELECT COUNT(*) FROM event_changes WHERE event_id = e.id AND state = ?) AS pending_changes
	FROM events e
	WHERE e.date >= ?
	ORDER BY e.date ASC;`

	var events []eventlink.UpcomingEvent
	if err := r.q.SelectContext(ctx, &events, q, eventlink.ChangePending, onOrAfter); err != nil {
		return nil, fmt.Errorf("error selecting upcoming events: %s", err)
	}

	return events, nil
}

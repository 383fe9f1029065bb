package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventlink/eventlink/internal/eventlink"
)

const changeNamespace = "-chg"

func (r Repo) AppendChange(ctx context.Context, entry eventlink.ChangeEntry) (eventlink.ChangeEntry, error) {
	// The ledger only stages changes against events that exist.
	if _, err := r.Event(ctx, entry.EventID); err != nil {
		return eventlink.ChangeEntry{}, err
	}

	const q = `INSERT INTO event_changes (id, event_id, field, old_value, new_value, state)
	VALUES (:id, :event_id, :field, :old_value, :new_value, :state);`

	entry.ID = uuid.NewString() + changeNamespace
	if entry.State == "" {
		entry.State = eventlink.ChangePending
	}
	if _, err := r.q.NamedExecContext(ctx, q, entry); err != nil {
		return eventlink.ChangeEntry{}, fmt.Errorf("error inserting change entry: %s", err)
	}

	return r.Change(ctx, entry.ID)
}

func (r Repo) Change(ctx context.Context, id string) (eventlink.ChangeEntry, error) {
	const q = `SELECT * FROM event_changes WHERE id = ?;`

	var entry eventlink.ChangeEntry
	err := r.q.GetContext(ctx, &entry, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.ChangeEntry{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.ChangeEntry{}, fmt.Errorf("error fetching change entry: %s", err)
	}

	return entry, nil
}

func (r Repo) SetChangeState(ctx context.Context, id string, state eventlink.ChangeState) error {
	const q = `UPDATE event_changes SET state = ? WHERE id = ?;`

	res, err := r.q.ExecContext(ctx, q, state, id)
	if err != nil {
		return fmt.Errorf("error updating change state: %s", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eventlink.ErrNotFound
	}

	return nil
}

// PendingChanges lists every change still awaiting a decision, newest
// first, joined with its target event for display.
func (r Repo) PendingChanges(ctx context.Context) ([]eventlink.PendingChange, error) {
	const q = `SELECT ec.*, e.code AS event_code, e.name AS event_name
	FROM event_changes ec
	INNER JOIN events e ON ec.event_id = e.id
	WHERE ec.state = ?
	ORDER BY ec.created_at DESC;`

	var changes []eventlink.PendingChange
	if err := r.q.SelectContext(ctx, &changes, q, eventlink.ChangePending); err != nil {
		return nil, fmt.Errorf("error selecting pending changes: %s", err)
	}

	return changes, nil
}

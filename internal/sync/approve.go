package sync

import (
	"context"
	"fmt"

	"github.com/eventlink/eventlink/internal/eventlink"
)

// Approver applies or discards staged change entries. It is the only
// path that mutates fields on an existing event.
type Approver struct {
	repo eventlink.Repository
}

func NewApprover(repo eventlink.Repository) Approver {
	return Approver{repo: repo}
}

// Decide moves a pending change entry to a terminal state. An approval
// overwrites the target event field with the staged value; a rejection
// leaves the event untouched. Entries already in a terminal state are
// never re-processed.
func (a Approver) Decide(ctx context.Context, changeID string, decision eventlink.ChangeState) (eventlink.ChangeEntry, error) {
	if decision != eventlink.ChangeApproved && decision != eventlink.ChangeRejected {
		return eventlink.ChangeEntry{}, fmt.Errorf("decision must be %s or %s: %w",
			eventlink.ChangeApproved, eventlink.ChangeRejected, eventlink.ErrInvalidInput)
	}

	var decided eventlink.ChangeEntry
	err := a.repo.InTx(ctx, func(repo eventlink.Repository) error {
		entry, err := repo.Change(ctx, changeID)
		if err != nil {
			return err
		}
		if entry.State.Terminal() {
			return fmt.Errorf("change already %s: %w", entry.State, eventlink.ErrConflict)
		}

		if decision == eventlink.ChangeApproved {
			if err := repo.UpdateEventField(ctx, entry.EventID, entry.Field, entry.NewValue); err != nil {
				return fmt.Errorf("error applying change: %w", err)
			}
		}

		if err := repo.SetChangeState(ctx, changeID, decision); err != nil {
			return fmt.Errorf("error setting change state: %w", err)
		}

		entry.State = decision
		decided = entry

		return nil
	})
	if err != nil {
		return eventlink.ChangeEntry{}, err
	}

	return decided, nil
}

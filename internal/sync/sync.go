// Package sync ingests externally-sourced event records, diffs them
// against the canonical store, and stages field-level changes for human
// approval. Creation of unseen events is immediate; modification of
// existing events only ever happens through an approved change.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eventlink/eventlink/internal/eventlink"
)

type (
	// Engine diffs inbound batches against the event store.
	Engine struct {
		repo eventlink.Repository
	}

	// InboundEvent is one externally-observed event record.
	InboundEvent struct {
		Code     string `json:"EventCode"`
		Name     string `json:"EventName"`
		Date     string `json:"EventDate"`
		Location string `json:"Location"`
	}

	// Summary reports what a batch did: events created, codes with
	// changes now awaiting approval, and codes that failed outright.
	Summary struct {
		Synced          []eventlink.Event `json:"synced"`
		PendingApproval []string          `json:"pending_approval"`
		Failed          []string          `json:"failed,omitempty"`
	}
)

func NewEngine(repo eventlink.Repository) Engine {
	return Engine{repo: repo}
}

// Sync processes the batch in order. Each record runs in its own
// transaction; a failed record is reported in the summary and does not
// abort the rest of the batch.
func (e Engine) Sync(ctx context.Context, batch []InboundEvent) (Summary, error) {
	summary := Summary{
		Synced:          []eventlink.Event{},
		PendingApproval: []string{},
	}

	for _, record := range batch {
		err := e.repo.InTx(ctx, func(repo eventlink.Repository) error {
			return e.syncOne(ctx, repo, record, &summary)
		})
		if err != nil {
			slog.WarnContext(ctx, "error syncing record", "code", record.Code, "error", err)
			summary.Failed = append(summary.Failed, record.Code)
		}
	}

	return summary, nil
}

func (e Engine) syncOne(ctx context.Context, repo eventlink.Repository, record InboundEvent, summary *Summary) error {
	existing, err := repo.EventByCode(ctx, record.Code)
	if errors.Is(err, eventlink.ErrNotFound) {
		created, err := repo.InsertEvent(ctx, eventlink.Event{
			Code:     record.Code,
			Name:     record.Name,
			Date:     optional(record.Date),
			Location: optional(record.Location),
		})
		if err != nil {
			return fmt.Errorf("error creating event: %w", err)
		}
		summary.Synced = append(summary.Synced, created)

		return nil
	}
	if err != nil {
		return fmt.Errorf("error looking up event: %w", err)
	}

	// The event is known: stage a change entry per differing field, but
	// never touch the event itself.
	diffs := []struct {
		field    eventlink.FieldKind
		stored   *string
		incoming string
	}{
		{eventlink.FieldDate, existing.Date, record.Date},
		{eventlink.FieldLocation, existing.Location, record.Location},
		{eventlink.FieldName, &existing.Name, record.Name},
	}

	var differed bool
	for _, d := range diffs {
		if deref(d.stored) == d.incoming {
			continue
		}
		differed = true

		if _, err := repo.AppendChange(ctx, eventlink.ChangeEntry{
			EventID:  existing.ID,
			Field:    d.field,
			OldValue: d.stored,
			NewValue: optional(d.incoming),
			State:    eventlink.ChangePending,
		}); err != nil {
			return fmt.Errorf("error staging %s change: %w", d.field, err)
		}
	}

	if differed {
		summary.PendingApproval = append(summary.PendingApproval, record.Code)
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

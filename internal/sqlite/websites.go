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

const (
	websiteNamespace = "-web"
	linkNamespace    = "-lnk"
)

func (r Repo) Website(ctx context.Context, id string) (eventlink.Website, error) {
	const q = `SELECT * FROM websites WHERE id = ?;`

	var site eventlink.Website
	err := r.q.GetContext(ctx, &site, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.Website{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.Website{}, fmt.Errorf("error fetching website: %s", err)
	}

	return site, nil
}

// ActiveWebsites retrieves the websites eligible for reconciliation fan-out.
func (r Repo) ActiveWebsites(ctx context.Context) ([]eventlink.Website, error) {
	const q = `SELECT * FROM websites WHERE status = ? ORDER BY created_at ASC;`

	var sites []eventlink.Website
	if err := r.q.SelectContext(ctx, &sites, q, eventlink.WebsiteActive); err != nil {
		return nil, fmt.Errorf("error selecting active websites: %s", err)
	}

	return sites, nil
}

func (r Repo) SearchWebsites(ctx context.Context, term, status string) ([]eventlink.Website, error) {
	q := sq.Select("*").From("websites")
	if term != "" {
		pattern := "%" + term + "%"
		q = q.Where(sq.Or{
			sq.Like{"code": pattern},
			sq.Like{"base_url": pattern},
		})
	}
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}
	q = q.OrderBy("created_at DESC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var sites []eventlink.Website
	if err := r.q.SelectContext(ctx, &sites, query, args...); err != nil {
		return nil, fmt.Errorf("error searching websites: %s", err)
	}

	return sites, nil
}

func (r Repo) InsertWebsite(ctx context.Context, site eventlink.Website) (eventlink.Website, error) {
	const q = `INSERT INTO websites (id, code, base_url, status)
	VALUES (:id, :code, :base_url, :status);`

	site.ID = uuid.NewString() + websiteNamespace
	if site.Status == "" {
		site.Status = eventlink.WebsiteActive
	}
	_, err := r.q.NamedExecContext(ctx, q, site)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteUniqueViolation {
		return eventlink.Website{}, fmt.Errorf("website %q already exists: %w", site.Code, eventlink.ErrConflict)
	}
	if err != nil {
		return eventlink.Website{}, fmt.Errorf("error inserting website: %s", err)
	}

	return r.Website(ctx, site.ID)
}

func (r Repo) UpdateWebsite(ctx context.Context, site eventlink.Website) error {
	const q = `UPDATE websites
	SET code = :code, base_url = :base_url, status = :status, updated_at = CURRENT_TIMESTAMP
	WHERE id = :id;`

	res, err := r.q.NamedExecContext(ctx, q, site)
	if err != nil {
		return fmt.Errorf("error updating website: %s", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eventlink.ErrNotFound
	}

	return nil
}

func (r Repo) DeleteWebsite(ctx context.Context, id string) error {
	const q = `DELETE FROM websites WHERE id = ?;`

	if _, err := r.q.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("error deleting website: %s", err)
	}

	return nil
}

func (r Repo) LinkEvent(ctx context.Context, link eventlink.WebsiteLink) (eventlink.WebsiteLink, error) {
	const q = `INSERT INTO website_events (id, website_id, event_id, event_link, status)
	VALUES (:id, :website_id, :event_id, :event_link, :status);`

	link.ID = uuid.NewString() + linkNamespace
	if link.Status == "" {
		link.Status = string(eventlink.ChangePending)
	}
	_, err := r.q.NamedExecContext(ctx, q, link)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteUniqueViolation {
		return eventlink.WebsiteLink{}, fmt.Errorf("event already linked to website: %w", eventlink.ErrConflict)
	}
	if err != nil {
		return eventlink.WebsiteLink{}, fmt.Errorf("error linking event to website: %s", err)
	}

	const sel = `SELECT * FROM website_events WHERE id = ?;`
	var inserted eventlink.WebsiteLink
	if err := r.q.GetContext(ctx, &inserted, sel, link.ID); err != nil {
		return eventlink.WebsiteLink{}, fmt.Errorf("error fetching link: %s", err)
	}

	return inserted, nil
}

func (r Repo) WebsitesForEvent(ctx context.Context, eventCode string) ([]eventlink.LinkedWebsite, error) {
	const q = `SELECT w.*, we.id AS link_id, we.status AS link_status, we.event_link
	FROM websites w
	INNER JOIN website_events we ON w.id = we.website_id
	INNER JOIN events e ON we.event_id = e.id
	WHERE e.code = ?;`

	var sites []eventlink.LinkedWebsite
	if err := r.q.SelectContext(ctx, &sites, q, eventCode); err != nil {
		return nil, fmt.Errorf("error selecting linked websites: %s", err)
	}

	return sites, nil
}

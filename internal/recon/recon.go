// Package recon cross-checks event data against the fleet of partner
// websites. Each active website exposes its own upcoming-events API; the
// engine fans out to all of them, tolerates any single site failing, and
// aggregates whatever matches come back.
package recon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/webclient"
)

const defaultConcurrency = 8

// WebsiteSource yields the websites eligible for fan-out.
type WebsiteSource interface {
	ActiveWebsites(ctx context.Context) ([]eventlink.Website, error)
}

type (
	// Engine runs reconciliation searches and date-correction pushes.
	Engine struct {
		client      *webclient.Client
		websites    WebsiteSource
		concurrency int
	}

	// Match is one event listing found on one partner website. Ephemeral:
	// produced per search, never persisted.
	Match struct {
		WebsiteCode string `json:"WebsiteCode"`
		BaseURL     string `json:"BaseURL"`
		EventID     string `json:"EventId"`
		EventName   string `json:"EventName"`
		EventLink   string `json:"EventLink"`
		EventDate   string `json:"EventDate"`
		Status      string `json:"Status"`
	}
)

func NewEngine(client *webclient.Client, websites WebsiteSource, concurrency int) Engine {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return Engine{
		client:      client,
		websites:    websites,
		concurrency: concurrency,
	}
}

// FindAcrossWebsites queries every active website for a listing whose link
// contains the search term. A website that errors, times out, or returns
// garbage contributes nothing; it never affects its siblings. Results keep
// the website registry order.
func (e Engine) FindAcrossWebsites(ctx context.Context, term string) ([]Match, error) {
	if term == "" {
		return nil, fmt.Errorf("search term is required: %w", eventlink.ErrInvalidInput)
	}

	sites, err := e.websites.ActiveWebsites(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading active websites: %s", err)
	}

	// One result slot per site so aggregation preserves registry order
	// regardless of completion order.
	results := make([]*Match, len(sites))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			match, err := e.checkWebsite(gCtx, site, term)
			if err != nil {
				slog.DebugContext(ctx, "website check failed", "website", site.Code, "error", err)
				return nil
			}
			results[i] = match

			return nil
		})
	}
	// Branches never return errors; failures became nil slots.
	_ = g.Wait()

	matches := []Match{}
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	return matches, nil
}

// Queries a single website. Returns (nil, nil) when the site responds fine
// but lists nothing matching the term.
func (e Engine) checkWebsite(ctx context.Context, site eventlink.Website, term string) (*Match, error) {
	resp, err := e.client.Get(ctx, site.BaseURL+"/api/upcoming-events")
	if err != nil {
		return nil, fmt.Errorf("error fetching listings: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding listings: %s", err)
	}

	needle := strings.ToLower(term)
	for _, record := range raw {
		listing := adapt(record)
		if !strings.Contains(strings.ToLower(listing.Link), needle) {
			continue
		}

		// First match wins; a website contributes at most one.
		return &Match{
			WebsiteCode: site.Code,
			BaseURL:     site.BaseURL,
			EventID:     listing.ID,
			EventName:   listing.Name,
			EventLink:   listing.Link,
			EventDate:   listing.Date,
			Status:      "Found",
		}, nil
	}

	return nil, nil
}

// PushDateCorrection writes a corrected date to a partner website's own
// update endpoint. Nothing local changes; the caller reconciles its own
// view separately.
func (e Engine) PushDateCorrection(ctx context.Context, websiteURL, remoteEventID, newDate string) error {
	if websiteURL == "" || remoteEventID == "" || newDate == "" {
		return fmt.Errorf("websiteUrl, eventId and newDate are required: %w", eventlink.ErrInvalidInput)
	}

	base := strings.TrimSuffix(websiteURL, "/")
	url := fmt.Sprintf("%s/api/upcoming-events/update/%s", base, remoteEventID)

	resp, err := e.client.PostForm(ctx, url, map[string]string{"eventdate": newDate})
	if err != nil {
		return fmt.Errorf("error pushing date correction: %w: %s", eventlink.ErrRemoteRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("update returned status %d: %w", resp.StatusCode, eventlink.ErrRemoteRejected)
	}

	return nil
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	elerrs "github.com/eventlink/eventlink/internal/errors"
	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/serverutil"
	"github.com/eventlink/eventlink/internal/sync"
)

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) error {
	events, err := s.repo.SearchEvents(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, events)
}

func (s *Server) getUpcomingEvents(w http.ResponseWriter, r *http.Request) error {
	today := time.Now().Format("2006-01-02")
	events, err := s.repo.UpcomingEvents(r.Context(), today)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, events)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	if event, ok := s.eventRespCache.Get(id); ok {
		return serverutil.WriteJSON(w, http.StatusOK, event)
	}

	event, err := s.repo.Event(r.Context(), id)
	if err != nil {
		return err
	}
	s.eventRespCache.Add(id, event)

	return serverutil.WriteJSON(w, http.StatusOK, event)
}

type syncRequest struct {
	Events []sync.InboundEvent `json:"events"`
}

func (s *Server) postSync(w http.ResponseWriter, r *http.Request) error {
	var body syncRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return elerrs.E(err, http.StatusBadRequest)
	}

	summary, err := s.engine.Sync(r.Context(), body.Events)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) getPendingChanges(w http.ResponseWriter, r *http.Request) error {
	changes, err := s.repo.PendingChanges(r.Context())
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, changes)
}

type changeDecisionRequest struct {
	Status eventlink.ChangeState `json:"status"`
}

func (s *Server) putChange(w http.ResponseWriter, r *http.Request) error {
	var body changeDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return elerrs.E(err, http.StatusBadRequest)
	}

	decided, err := s.approver.Decide(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		return err
	}

	// An approval may have rewritten a cached event.
	s.eventRespCache.Remove(decided.EventID)

	return serverutil.WriteJSON(w, http.StatusOK, decided)
}

type linkRequest struct {
	WebsiteID string  `json:"website_id"`
	EventID   string  `json:"event_id"`
	EventLink *string `json:"RelatedEventLink"`
}

func (lr linkRequest) Validate() error {
	if lr.WebsiteID == "" || lr.EventID == "" {
		return elerrs.E("website_id and event_id are required", http.StatusBadRequest)
	}

	return nil
}

func (s *Server) postLink(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[linkRequest](r.Body)
	if err != nil {
		return err
	}

	link, err := s.repo.LinkEvent(r.Context(), eventlink.WebsiteLink{
		WebsiteID: body.WebsiteID,
		EventID:   body.EventID,
		EventLink: body.EventLink,
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusCreated, link)
}

func (s *Server) getEventWebsites(w http.ResponseWriter, r *http.Request) error {
	sites, err := s.repo.WebsitesForEvent(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, sites)
}

type checkWebsitesRequest struct {
	EventName string `json:"eventName"`
}

func (s *Server) postCheckMyWebsites(w http.ResponseWriter, r *http.Request) error {
	var body checkWebsitesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return elerrs.E(err, http.StatusBadRequest)
	}

	matches, err := s.recon.FindAcrossWebsites(r.Context(), body.EventName)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, matches)
}

type updateDateRequest struct {
	WebsiteURL string `json:"websiteUrl"`
	EventID    string `json:"eventId"`
	NewDate    string `json:"newDate"`
}

func (s *Server) postUpdateDateOnWebsite(w http.ResponseWriter, r *http.Request) error {
	var body updateDateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return elerrs.E(err, http.StatusBadRequest)
	}

	if err := s.recon.PushDateCorrection(r.Context(), body.WebsiteURL, body.EventID, body.NewDate); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, map[string]any{"websiteUpdated": true})
}

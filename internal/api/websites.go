package api

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	elerrs "github.com/eventlink/eventlink/internal/errors"
	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/serverutil"
)

func (s *Server) getWebsites(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	sites, err := s.repo.SearchWebsites(r.Context(), q.Get("search"), q.Get("status"))
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, sites)
}

func (s *Server) getWebsite(w http.ResponseWriter, r *http.Request) error {
	site, err := s.repo.Website(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, site)
}

type websiteRequest struct {
	Code    string `json:"WebsiteCode"`
	BaseURL string `json:"BaseURL"`
	Status  string `json:"Status"`
}

func (wr websiteRequest) Validate() error {
	var details []elerrs.Detail
	if wr.Code == "" {
		details = append(details, elerrs.Detail{Field: "WebsiteCode", Error: "is required"})
	}
	if wr.BaseURL == "" {
		details = append(details, elerrs.Detail{Field: "BaseURL", Error: "is required"})
	}
	if len(details) > 0 {
		return elerrs.E("invalid website", details, http.StatusBadRequest)
	}

	return nil
}

func (s *Server) postWebsite(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[websiteRequest](r.Body)
	if err != nil {
		return err
	}

	site, err := s.repo.InsertWebsite(r.Context(), eventlink.Website{
		Code:    body.Code,
		BaseURL: body.BaseURL,
		Status:  body.Status,
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusCreated, site)
}

func (s *Server) putWebsite(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[websiteRequest](r.Body)
	if err != nil {
		return err
	}

	site := eventlink.Website{
		ID:      mux.Vars(r)["id"],
		Code:    body.Code,
		BaseURL: body.BaseURL,
		Status:  body.Status,
	}
	if site.Status == "" {
		site.Status = eventlink.WebsiteActive
	}
	if err := s.repo.UpdateWebsite(r.Context(), site); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, site)
}

func (s *Server) deleteWebsite(w http.ResponseWriter, r *http.Request) error {
	if err := s.repo.DeleteWebsite(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, struct{}{})
}

type csvImportError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// Imports websites from an uploaded CSV with a WebsiteCode,BaseURL,Status
// header. A bad row is reported and skipped; the rest of the file still
// imports.
func (s *Server) postWebsitesCSV(w http.ResponseWriter, r *http.Request) error {
	file, _, err := r.FormFile("file")
	if err != nil {
		return elerrs.E("missing csv file", http.StatusBadRequest)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return elerrs.E("error reading csv header", http.StatusBadRequest)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	codeIdx, ok := cols["WebsiteCode"]
	if !ok {
		return elerrs.E("csv missing WebsiteCode column", http.StatusBadRequest)
	}
	urlIdx, ok := cols["BaseURL"]
	if !ok {
		return elerrs.E("csv missing BaseURL column", http.StatusBadRequest)
	}
	statusIdx, hasStatus := cols["Status"]

	var (
		imported  int
		rowErrors = []csvImportError{}
		line      = 1
	)
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, csvImportError{Line: line, Error: err.Error()})
			continue
		}

		site := eventlink.Website{
			Code:    row[codeIdx],
			BaseURL: row[urlIdx],
		}
		if hasStatus && statusIdx < len(row) {
			site.Status = row[statusIdx]
		}

		if _, err := s.repo.InsertWebsite(r.Context(), site); err != nil {
			rowErrors = append(rowErrors, csvImportError{Line: line, Error: err.Error()})
			continue
		}
		imported++
	}

	return serverutil.WriteJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"errors":   rowErrors,
	})
}

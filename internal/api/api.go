// Package api serves the admin JSON API: operator auth, users/websites
// CRUD, event reads, the sync and change-approval routes, and the
// cross-site reconciliation routes.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/recon"
	"github.com/eventlink/eventlink/internal/serverutil"
	"github.com/eventlink/eventlink/internal/sync"
)

type (
	// Server is an instance of the admin API server.
	Server struct {
		*http.Server

		repo     eventlink.Repository
		engine   sync.Engine
		approver sync.Approver
		recon    recon.Engine

		eventRespCache *lru.Cache[string, eventlink.Event]

		secureCookie *securecookie.SecureCookie
		httpsCookies bool // Whether or not HTTPS should be used for cookies
	}

	ServerConfig struct {
		Port           int
		CookieHashKey  []byte
		CookieBlockKey []byte
		HttpsCookies   bool
		CorsOrigin     string
	}
)

func NewServer(config ServerConfig, repo eventlink.Repository, engine sync.Engine, approver sync.Approver, reconEngine recon.Engine) *Server {
	var (
		r        = serverutil.ErrRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, eventlink.Event](1024)
	)

	srvr := Server{
		repo:           repo,
		engine:         engine,
		approver:       approver,
		recon:          reconEngine,
		eventRespCache: cache,
		secureCookie:   securecookie.New(config.CookieHashKey, config.CookieBlockKey),
		httpsCookies:   config.HttpsCookies,
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%d", config.Port),
			ReadTimeout: 5 * time.Second,
			// Reconciliation fans out to partner sites with a 10s budget
			// each, so responses can outlast the usual write timeout.
			WriteTimeout: 30 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsOrigin}),
				handlers.AllowCredentials(),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything
	r.HandleFuncE("/api/health", srvr.getHealth).Methods(http.MethodGet)
	r.HandleFuncE("/api/auth/login", srvr.postLogin).Methods(http.MethodPost)
	r.HandleFuncE("/api/auth/logout", srvr.getLogout).Methods(http.MethodGet)

	authed := serverutil.ErrRouter{Router: r.NewRoute().Subrouter()}
	authed.Use(requireSessionMiddleware(srvr.secureCookie))

	// Partner website registry
	authed.HandleFuncE("/api/websites", srvr.getWebsites).Methods(http.MethodGet)
	authed.HandleFuncE("/api/websites", srvr.postWebsite).Methods(http.MethodPost)
	authed.HandleFuncE("/api/websites/import/csv", srvr.postWebsitesCSV).Methods(http.MethodPost)
	authed.HandleFuncE("/api/websites/{id}", srvr.getWebsite).Methods(http.MethodGet)
	authed.HandleFuncE("/api/websites/{id}", srvr.putWebsite).Methods(http.MethodPut)

	// Event sync and the change approval queue
	authed.HandleFuncE("/api/events", srvr.getEvents).Methods(http.MethodGet)
	authed.HandleFuncE("/api/events/upcoming", srvr.getUpcomingEvents).Methods(http.MethodGet)
	authed.HandleFuncE("/api/events/sync", srvr.postSync).Methods(http.MethodPost)
	authed.HandleFuncE("/api/events/changes/pending", srvr.getPendingChanges).Methods(http.MethodGet)
	authed.HandleFuncE("/api/events/changes/{id}", srvr.putChange).Methods(http.MethodPut)
	authed.HandleFuncE("/api/events/link", srvr.postLink).Methods(http.MethodPost)

	// Cross-site reconciliation
	authed.HandleFuncE("/api/events/check-my-websites", srvr.postCheckMyWebsites).Methods(http.MethodPost)
	authed.HandleFuncE("/api/events/update-date-on-website", srvr.postUpdateDateOnWebsite).Methods(http.MethodPost)

	authed.HandleFuncE("/api/events/{id}", srvr.getEvent).Methods(http.MethodGet)
	authed.HandleFuncE("/api/events/{code}/websites", srvr.getEventWebsites).Methods(http.MethodGet)

	// Operator account management and destructive routes are admin-only
	admin := serverutil.ErrRouter{Router: authed.NewRoute().Subrouter()}
	admin.Use(requireAdminMiddleware(srvr.secureCookie))
	admin.HandleFuncE("/api/users", srvr.getUsers).Methods(http.MethodGet)
	admin.HandleFuncE("/api/users", srvr.postUser).Methods(http.MethodPost)
	admin.HandleFuncE("/api/users/{id}", srvr.putUser).Methods(http.MethodPut)
	admin.HandleFuncE("/api/users/{id}", srvr.deleteUser).Methods(http.MethodDelete)
	admin.HandleFuncE("/api/websites/{id}", srvr.deleteWebsite).Methods(http.MethodDelete)

	slog.Debug("configured api server", "port", config.Port)

	return &srvr
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) error {
	return serverutil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
	})
}

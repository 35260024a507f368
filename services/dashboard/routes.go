package dashboard

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"datapeek/lib/catalog"
	"datapeek/lib/fetch"
	"datapeek/lib/tabular"

	"github.com/gorilla/mux"
)

type Route struct {
	Path    string
	Methods []string
	Handler func(w http.ResponseWriter, r *http.Request) error
}

func statusFor(err error) int {
	var parseErr *csv.ParseError
	var urlErr *url.Error
	switch {
	case errors.Is(err, catalog.ErrUnknownSource),
		errors.Is(err, tabular.ErrNoColumn),
		errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNoUrl):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrStatus), errors.As(err, &urlErr):
		return http.StatusBadGateway
	case errors.Is(err, tabular.ErrEmpty), errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func WithErrorHandle(hndl func(w http.ResponseWriter, r *http.Request) error,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		err := hndl(w, r)
		if err != nil {
			status := statusFor(err)
			slog.ErrorContext(
				r.Context(), "request failed",
				"path", r.URL.Path,
				"status", status,
				"err", err,
			)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		}
	}
}

func (s Service) Routes() []Route {
	return []Route{
		{Path: "/", Methods: []string{"GET"}, Handler: s.handleIndex},
		{Path: "/healthz", Methods: []string{"GET"}, Handler: s.handleHealthz},
		{Path: "/api/sources", Methods: []string{"GET"}, Handler: s.handleSources},
		{Path: "/api/sources/{name}/preview", Methods: []string{"GET"}, Handler: s.handlePreview},
		{Path: "/api/sources/{name}/describe", Methods: []string{"GET"}, Handler: s.handleDescribe},
		{Path: "/api/sources/{name}/counts", Methods: []string{"GET"}, Handler: s.handleCounts},
		{Path: "/api/sources/{name}/groupmean", Methods: []string{"GET"}, Handler: s.handleGroupMean},
		{Path: "/api/sources/{name}/hist", Methods: []string{"GET"}, Handler: s.handleHistogram},
		{Path: "/api/sources/{name}/fetch", Methods: []string{"POST"}, Handler: s.handleFetch},
		{Path: "/api/sources/{name}/history", Methods: []string{"GET"}, Handler: s.handleSourceHistory},
		{Path: "/api/history", Methods: []string{"GET"}, Handler: s.handleHistory},
	}
}

func NewRouter(s Service) *mux.Router {
	router := mux.NewRouter()
	for _, r := range s.Routes() {
		router.HandleFunc(r.Path, WithErrorHandle(r.Handler)).Methods(r.Methods...)
	}
	return router
}

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

// preferenceSpecs lists the values each preference accepts. The first is the
// default.
var preferenceSpecs = map[string][]string{
	"theme":    {"system", "light", "dark"},
	"language": {"en", "fr", "ar"},
}

type preferenceBody struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default bool   `json:"default,omitempty"`
}

// preferenceKey namespaces key by client.
func preferenceKey(client, key string) string {
	return client + ":" + key
}

// preference returns the stored value for key, or its default.
func (s *Server) preference(r *http.Request, client, key string) string {
	if v, ok, err := s.prefs.Get(r.Context(), preferenceKey(client, key)); err == nil && ok {
		return v
	}
	return preferenceSpecs[key][0]
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	allowed, ok := preferenceSpecs[key]
	if !ok {
		respondError(w, r, fmt.Errorf("%w %q", errUnknownPref, key), http.StatusNotFound)
		return
	}
	client := clientID(w, r)

	v, found, err := s.prefs.Get(r.Context(), preferenceKey(client, key))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeJSON(w, preferenceBody{Key: key, Value: allowed[0], Default: true})
		return
	}
	writeJSON(w, preferenceBody{Key: key, Value: v})
}

// handleSetPreference accepts {"value": "..."} as JSON or a "value" form field.
func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	allowed, ok := preferenceSpecs[key]
	if !ok {
		respondError(w, r, fmt.Errorf("%w %q", errUnknownPref, key), http.StatusNotFound)
		return
	}

	var value string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body preferenceBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err), http.StatusBadRequest)
			return
		}
		value = body.Value
	} else {
		value = r.FormValue("value")
	}

	value = strings.TrimSpace(value)
	if !slices.Contains(allowed, value) {
		respondError(w, r, fmt.Errorf("%w value %q for %s", errUnknownPref, value, key), http.StatusBadRequest)
		return
	}

	client := clientID(w, r)
	if err := s.prefs.Set(r.Context(), preferenceKey(client, key), value); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, preferenceBody{Key: key, Value: value})
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := preferenceSpecs[key]; !ok {
		respondError(w, r, fmt.Errorf("%w %q", errUnknownPref, key), http.StatusNotFound)
		return
	}

	client := clientID(w, r)
	if err := s.prefs.Delete(r.Context(), preferenceKey(client, key)); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

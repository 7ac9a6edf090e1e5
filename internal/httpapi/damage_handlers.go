package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"roadwatch.org/internal/damage"
	"roadwatch.org/internal/obs"
)

func (a *API) handleDamageCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	recs, err := a.damage.List(r.Context(), principal.Scope)
	if err != nil {
		handleDamageError(w, r, err)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	recs = damage.Apply(filter, recs)

	writeJSON(w, http.StatusOK, map[string]any{
		"items": recs,
		"total": len(recs),
	})
}

func (a *API) handleDamageResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/damage/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	rec, err := a.damage.Get(r.Context(), principal.Scope, id)
	if err != nil {
		handleDamageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleDamageStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	recs, err := a.damage.List(r.Context(), principal.Scope)
	if err != nil {
		handleDamageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, damage.Summarize(recs))
}

func (a *API) handleCrackSubtypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	recs, err := a.damage.List(r.Context(), principal.Scope)
	if err != nil {
		handleDamageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subtypes": damage.CrackSubtypes(recs),
	})
}

func (a *API) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if !principal.IsAdmin() {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return
	}
	if a.reconciler == nil {
		writeError(w, r, http.StatusServiceUnavailable, "reconciliation disabled")
		return
	}

	obs.LogEvent(map[string]any{
		"msg":        "reconciliation_requested",
		"user_id":    principal.UserID,
		"request_id": RequestIDFromContext(r.Context()),
	})

	report, err := a.reconciler.Run(r.Context())
	if err != nil {
		// The report carries the failure shape clients expect.
		writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// filterFromQuery builds the facet filter. A dimension left out of the query
// stays fully enabled; a dimension present with an empty value selects
// nothing on purpose.
func filterFromQuery(q url.Values) (damage.Filter, error) {
	f := damage.AllFilter()

	if q.Has("severity") {
		f.Severities = map[damage.Severity]bool{}
		for _, raw := range splitCSV(q.Get("severity")) {
			sev, err := damage.ParseSeverity(raw)
			if err != nil {
				return damage.Filter{}, err
			}
			f.Severities[sev] = true
		}
	}
	if q.Has("type") {
		f.Types = map[damage.DamageType]bool{}
		for _, raw := range splitCSV(q.Get("type")) {
			t, err := damage.ParseDamageType(raw)
			if err != nil {
				return damage.Filter{}, err
			}
			f.Types[t] = true
		}
	}
	f.CrackSubtype = strings.TrimSpace(q.Get("crack_subtype"))
	return f, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func handleDamageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, damage.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, damage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "record not found")
	case errors.Is(err, damage.ErrAccessDenied):
		// present out-of-scope records as absent
		writeError(w, r, http.StatusNotFound, "record not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

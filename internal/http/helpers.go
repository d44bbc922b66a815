package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caja/internal/backend"
	"caja/internal/core"
	"caja/internal/filter"
)

const dayLayout = "2006-01-02"

// sessionFromRequest lifts the caller's credentials off the inbound
// request. Both headers are optional: a missing token means the upstream
// call goes out unauthenticated and the backend decides.
func sessionFromRequest(r *http.Request) backend.Session {
	token := r.Header.Get("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	return backend.Session{
		Token:  strings.TrimSpace(token),
		Tenant: strings.TrimSpace(r.Header.Get("X-Tenant")),
	}
}

// clientAddr extracts the client IP, honoring proxy headers
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop is the original client
		if i := strings.IndexByte(ip, ','); i > 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// filterFromQuery maps the list/summary query parameters onto a filter
// state. Unparsable dates leave the bound unset rather than failing the
// request.
func filterFromQuery(values map[string][]string) filter.State {
	get := func(key string) string {
		if v, ok := values[key]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var s filter.State
	if v := get("desde"); v != "" {
		if t, err := time.Parse(dayLayout, v); err == nil {
			s.From = t
		}
	}
	if v := get("hasta"); v != "" {
		if t, err := time.Parse(dayLayout, v); err == nil {
			s.To = t
		}
	}
	s.Account = core.Account(get("cuenta"))
	s.Concept = get("concepto")
	s.FreeText = get("q")
	if v := get("dia"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 1 && d <= 31 {
			s.DayOfMonth = d
		}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// upstreamStatus maps a backend failure to the status this API returns.
// Backend 4xx pass through so the UI can react; everything else is a bad
// gateway.
func upstreamStatus(err error) int {
	if apiErr, ok := asAPIError(err); ok && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func asAPIError(err error) (*backend.APIError, bool) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

package http

import (
	"net/http"
	"strconv"
	"strings"
)

type RouterConfig struct {
	Confirmations *ConfirmationHandler
	Middleware    []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Confirmations != nil {
		mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Confirmations.Mint(w, r)
		})

		mux.HandleFunc("/appointments/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/appointments/"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), id))
			cfg.Confirmations.Status(w, r)
		})

		mux.HandleFunc("/confirm/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/confirm/"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), id))
			cfg.Confirmations.ConfirmPage(w, r)
		})

		mux.HandleFunc("/do/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/do/")
			idPart, action, found := strings.Cut(rest, "/")
			if !found || action == "" || strings.Contains(action, "/") {
				http.NotFound(w, r)
				return
			}
			id, ok := parseID(idPart)
			if !ok {
				http.NotFound(w, r)
				return
			}
			// Links arrive as plain GETs from message clients; POST is the
			// canonical form.
			if r.Method != http.MethodGet && r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), id))
			cfg.Confirmations.Decide(w, r, action)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

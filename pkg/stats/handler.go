package stats

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/dittohttp/internal/logger"
)

// Handler serves the store as JSON: the full list at the mount point, or a
// single path with ?path=/some/file.
func Handler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var (
			body any
			err  error
		)
		if p := r.URL.Query().Get("path"); p != "" {
			body, err = store.Get(r.Context(), p)
		} else {
			body, err = store.List(r.Context())
		}

		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			logger.Error("Stats query failed: %v", err)
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Debug("Stats response write failed: %v", err)
		}
	})
}

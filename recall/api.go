package recall

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/recallwatch/shield"
)

// Handler returns the JSON HTTP API.
func (svc *Service) Handler() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultAPIStack(svc.logger) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, svc.Models())
		})

		r.Get("/sources", svc.handleListSources)
		r.Get("/sources/{key}", func(w http.ResponseWriter, r *http.Request) {
			src, err := svc.Source(r.Context(), chi.URLParam(r, "key"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, src)
		})
		r.Post("/sources/{key}/scan", func(w http.ResponseWriter, r *http.Request) {
			force, _ := strconv.ParseBool(r.URL.Query().Get("force_ocr"))
			res, err := svc.ScanSource(r.Context(), chi.URLParam(r, "key"), force)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/scan", func(w http.ResponseWriter, r *http.Request) {
			rep, err := svc.Scan(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})
		r.Get("/report", func(w http.ResponseWriter, r *http.Request) {
			rep := svc.LastReport()
			if rep == nil {
				writeError(w, r, ErrNotFound)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})

		r.Get("/items", func(w http.ResponseWriter, r *http.Request) {
			items, err := svc.Items(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		})
		r.Post("/items", svc.handleAddItem)
		r.Delete("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := svc.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		})

		r.Get("/snapshots", func(w http.ResponseWriter, r *http.Request) {
			snaps, err := svc.Snapshots(r.Context(), r.URL.Query().Get("source"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, snaps)
		})
	})
	return r
}

func (svc *Service) handleListSources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f SourceFilter
	if t := q.Get("tier"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			writeError(w, r, ErrInvalidInput)
			return
		}
		f.Tier = n
	}
	f.Country = q.Get("country")
	f.EnabledOnly, _ = strconv.ParseBool(q.Get("enabled"))

	list, err := svc.Sources(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (svc *Service) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ModelKey string `json:"model_key"`
		MHD      string `json:"mhd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, ErrInvalidInput)
		return
	}
	it, err := svc.AddItem(r.Context(), req.ModelKey, req.MHD)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP statuses. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownModel):
		code = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrDuplicateItem):
		code = http.StatusConflict
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		shield.GetLogger(r.Context()).Error("api: request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

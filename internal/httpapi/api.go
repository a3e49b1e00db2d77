package httpapi

import (
	"net/http"
	"os"

	"mediasync/internal/logging"
	"mediasync/internal/mediatypes"
	"mediasync/internal/store"
)

// handleNop is a liveness no-op.
func (a *API) handleNop(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCapability(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, capabilityResponse{
		Verbs:              supportedVerbs,
		AcceptedExtensions: acceptedExtensions(),
	})
}

// handleCheck reports whether the index has changed since the client's
// last known timestamp, letting a client avoid re-fetching /list.
func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	since, ok := parseInt64(r.URL.Query().Get("date"))
	if !ok {
		writeJSONError(w, "date query parameter is required", http.StatusBadRequest)
		return
	}
	changed := a.manager.LastUpdated().UnixMilli() > since
	writeJSON(w, map[string]bool{"changed": changed})
}

// handleList returns every record known to the manager, optionally
// filtered by media type and/or category.
func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := a.manager.AllFiles(r.Context())
	if err != nil {
		logging.Error("httpapi: listing files: %v", err)
		writeJSONError(w, "failed to list files", http.StatusInternalServerError)
		return
	}

	typeFilter := r.URL.Query().Get("type")
	catFilter := r.URL.Query().Get("c")

	filtered := make([]store.Record, 0, len(recs))
	for _, rec := range recs {
		if typeFilter != "" && string(rec.MediaType()) != typeFilter {
			continue
		}
		if catFilter != "" && rec.Category != catFilter {
			continue
		}
		filtered = append(filtered, rec)
	}
	writeJSON(w, filtered)
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	recs, err := a.manager.AllFiles(r.Context())
	if err != nil {
		logging.Error("httpapi: listing files for categories: %v", err)
		writeJSONError(w, "failed to list categories", http.StatusInternalServerError)
		return
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, rec := range recs {
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		categories = append(categories, rec.Category)
	}
	writeJSON(w, categories)
}

// handleServeRange backs /item, /video and /audio: whole-file or
// byte-range serving of the original file via http.ServeContent, which
// implements the Range/206/416/Content-Range contract natively.
func (a *API) handleServeRange(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.lookup(r)
	if !ok {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(rec.Path)
	if err != nil {
		logging.Warn("httpapi: opening %s: %v", rec.Path, err)
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("httpapi: stating %s: %v", rec.Path, err)
		writeJSONError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", rec.MimeType())
	http.ServeContent(w, r, rec.Path, info.ModTime(), f)
}

// handlePhoto serves an image whole: a generated thumbnail if the caller
// asks for one and a Generator is configured, otherwise the original
// file.
func (a *API) handlePhoto(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.lookup(r)
	if !ok {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	if rec.MediaType() != mediatypes.ClassPhoto {
		writeJSONError(w, "not a photo", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("thumb") == "1" && a.thumbnails != nil {
		data, contentType, err := a.thumbnails.Thumbnail(r.Context(), *rec)
		if err != nil {
			logging.Error("httpapi: generating thumbnail for %s: %v", rec.Path, err)
			writeJSONError(w, "failed to generate thumbnail", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(data)
		return
	}

	f, err := os.Open(rec.Path)
	if err != nil {
		logging.Warn("httpapi: opening %s: %v", rec.Path, err)
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("httpapi: stating %s: %v", rec.Path, err)
		writeJSONError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", rec.MimeType())
	// Drop any Range header so ServeContent always sends the whole image.
	r.Header.Del("Range")
	http.ServeContent(w, r, rec.Path, info.ModTime(), f)
}

// handleChapter is a stub: no chapter data exists in this domain, but the
// protocol names the verb so clients expect a well-formed empty response.
func (a *API) handleChapter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, []struct{}{})
}

func (a *API) handleGetCurrent(w http.ResponseWriter, _ *http.Request) {
	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()

	if current == nil {
		writeJSON(w, map[string]any{"id": nil})
		return
	}
	writeJSON(w, current)
}

func (a *API) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.lookup(r)
	if !ok {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}

	a.mu.Lock()
	a.current = rec
	a.mu.Unlock()

	writeJSON(w, rec)
}

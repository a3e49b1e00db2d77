package httpapi

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"mediasync/internal/manager"
	"mediasync/internal/mediatypes"
	"mediasync/internal/middleware"
	"mediasync/internal/store"
	"mediasync/internal/thumbnail"
)

// API serves the BooServer protocol verbs over the media index a
// manager.Manager keeps current.
type API struct {
	manager    *manager.Manager
	thumbnails *thumbnail.Generator

	mu      sync.RWMutex
	current *store.Record
}

// New constructs an API over mgr. thumbnails may be nil, in which case
// /photo always serves the original file instead of a generated preview.
func New(mgr *manager.Manager, thumbnails *thumbnail.Generator) *API {
	return &API{manager: mgr, thumbnails: thumbnails}
}

// Router builds the mux.Router serving every protocol verb, wrapped with
// the request logging and metrics middleware and CORS.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/nop", a.handleNop).Methods(http.MethodGet)
	r.HandleFunc("/capability", a.handleCapability).Methods(http.MethodGet)
	r.HandleFunc("/check", a.handleCheck).Methods(http.MethodGet)
	r.HandleFunc("/list", a.handleList).Methods(http.MethodGet)
	r.HandleFunc("/item", a.handleServeRange).Methods(http.MethodGet)
	r.HandleFunc("/video", a.handleServeRange).Methods(http.MethodGet)
	r.HandleFunc("/audio", a.handleServeRange).Methods(http.MethodGet)
	r.HandleFunc("/photo", a.handlePhoto).Methods(http.MethodGet)
	r.HandleFunc("/chapter", a.handleChapter).Methods(http.MethodGet)
	r.HandleFunc("/current", a.handleGetCurrent).Methods(http.MethodGet)
	r.HandleFunc("/current", a.handleSetCurrent).Methods(http.MethodPut)
	r.HandleFunc("/categories", a.handleCategories).Methods(http.MethodGet)

	logged := middleware.Logger(middleware.DefaultLoggingConfig())(r)
	metered := middleware.Metrics(middleware.DefaultMetricsConfig())(logged)
	compressed := middleware.Compression(middleware.DefaultCompressionConfig())(metered)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
	})
	return c.Handler(compressed)
}

func (a *API) lookup(r *http.Request) (*store.Record, bool) {
	id, ok := idParam(r)
	if !ok {
		return nil, false
	}
	return a.manager.GetFile(r.Context(), id)
}

// capabilityResponse describes what this server accepts and serves.
type capabilityResponse struct {
	Verbs              []string `json:"verbs"`
	AcceptedExtensions []string `json:"acceptedExtensions"`
}

var supportedVerbs = []string{
	"/nop", "/capability", "/check", "/list", "/item", "/video", "/audio",
	"/photo", "/chapter", "/current", "/categories",
}

func acceptedExtensions() []string {
	return mediatypes.AcceptedExtensions()
}

func idParam(r *http.Request) (int64, bool) {
	return parseInt64(r.URL.Query().Get("id"))
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/fileid"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/storage"
)

// searchRequest mirrors models.SearchQuery with an optional top_k.
type searchRequest struct {
	Query      string   `json:"query"`
	Collection string   `json:"collection"`
	TopK       *int     `json:"top_k,omitempty"`
	MinScore   *float64 `json:"min_score,omitempty"`
}

// CollectionInfo summarizes one loaded collection.
type CollectionInfo struct {
	Key         string `json:"key"`
	Sections    int    `json:"sections"`
	Fingerprint string `json:"fingerprint"`
}

// CollectionsResponse is the body of GET /api/v1/collections.
type CollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
	Generation  string           `json:"generation"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Collections    int       `json:"collections"`
	Sections       int       `json:"sections"`
	Vocabulary     int       `json:"vocabulary"`
	Generation     string    `json:"generation"`
	BuiltAt        time.Time `json:"built_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	StorageBackend string    `json:"storage_backend"`
	DiskUsageBytes int64     `json:"disk_usage_bytes"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	query := models.SearchQuery{
		Query:      req.Query,
		Collection: req.Collection,
		TopK:       s.config.Search.DefaultTopK,
		MinScore:   req.MinScore,
	}
	if req.TopK != nil {
		query.TopK = *req.TopK
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("collection", query.Collection),
		zap.Int("top_k", query.TopK),
	)
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondFailure(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	resp := CollectionsResponse{
		Collections: make([]CollectionInfo, 0),
		Generation:  snap.Generation,
	}
	for _, key := range snap.Keys() {
		c, _ := snap.Collection(key)
		resp.Collections = append(resp.Collections, CollectionInfo{
			Key:         key,
			Sections:    len(c.Sections),
			Fingerprint: strconv.FormatUint(c.Fingerprint, 16),
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sections, ok := s.store.Sections(key)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	s.respondJSON(w, http.StatusOK, models.CollectionDocument{Platform: key, Sections: sections})
}

func (s *Server) handleUpdateCollection(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var doc models.CollectionDocument
	if !s.decodeJSON(w, r, &doc) {
		return
	}
	if doc.Platform != "" && doc.Platform != key {
		s.respondError(w, http.StatusBadRequest, "platform does not match collection key")
		return
	}
	s.logger.Debug("update collection request", zap.String("collection", key), zap.Int("sections", len(doc.Sections)))
	if err := s.store.Update(r.Context(), key, doc.Sections); err != nil {
		s.respondFailure(w, "update failed", err)
		return
	}
	snap := s.store.Snapshot()
	c, _ := snap.Collection(key)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"collection": key,
		"sections":   len(c.Sections),
		"generation": snap.Generation,
		"status":     "updated",
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	reload, _ := strconv.ParseBool(r.URL.Query().Get("reload"))
	var err error
	if reload {
		_, err = s.store.Reload(r.Context())
	} else {
		err = s.store.RebuildAll(r.Context())
	}
	if err != nil {
		s.respondFailure(w, "rebuild failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"generation": s.store.Snapshot().Generation,
		"status":     "rebuilt",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	resp := StatusResponse{
		Collections:    len(snap.Keys()),
		Sections:       snap.SectionCount(),
		Vocabulary:     snap.Model.Dimensions(),
		Generation:     snap.Generation,
		BuiltAt:        snap.BuiltAt,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		StorageBackend: s.config.Storage.Backend,
	}
	path := s.config.Storage.DocsPath
	if s.config.Storage.Backend == storage.BackendSQLite {
		path = s.config.Storage.DatabasePath
	}
	if n, err := storage.DiskUsageBytes(path); err == nil {
		resp.DiskUsageBytes = n
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "cdpdocs"})
}

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case models.IsInputError(err),
		errors.Is(err, collection.ErrEmptyKey),
		errors.Is(err, fileid.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, collection.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

// decodeJSON reads the request body into v, answering 413 for oversized bodies and
// 400 for anything else that fails to decode.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	s.respondError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

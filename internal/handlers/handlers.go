package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/config"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/services/render"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/services/review"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/services/suggest"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/storage"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/utils"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/metrics"
)

type Handler struct {
	cfg          *config.Config
	sessionStore *storage.SessionStore
	frames       *storage.FrameStore
	renderer     *render.Renderer
	suggestSvc   *suggest.Service
}

func New(cfg *config.Config) *Handler {
	return &Handler{
		cfg:          cfg,
		sessionStore: storage.New(),
		frames:       storage.NewFrameStore(),
		renderer:     render.New(cfg.RenderWidth, cfg.RenderHeight),
		suggestSvc:   suggest.New(cfg.DensityThreshold),
	}
}

// sessionDisplay pushes rendered frames into the frame store, where the
// frame endpoint picks them up.
type sessionDisplay struct {
	handler *Handler
	session *models.ReviewSession
}

func (d *sessionDisplay) Show(rec coco.ImageRecord) error {
	img, err := d.handler.renderer.RenderRecord(d.session.ImageDir, rec, d.session.CategoryNames)
	if err != nil {
		return err
	}
	frame, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	d.handler.frames.Set(d.session.ID, frame)
	return nil
}

func (h *Handler) navigator(session *models.ReviewSession) *review.Navigator {
	return review.New(session, &sessionDisplay{handler: h, session: session})
}

func (h *Handler) snapshot(session *models.ReviewSession) models.SessionSnapshot {
	snapshot := models.SessionSnapshot{
		ID:         session.ID,
		Index:      session.Cursor,
		Total:      len(session.Records),
		Classified: len(session.Classifications),
		Selection:  session.Selection,
		CreatedAt:  session.CreatedAt,
	}
	if session.Cursor >= 0 && session.Cursor < len(session.Records) {
		rec := session.Records[session.Cursor]
		snapshot.Current = &rec
		snapshot.Suggested = h.suggestSvc.Suggest(session.ImageDir, rec)
	}
	return snapshot
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]models.SessionSnapshot, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, h.snapshot(session))
		}
		if err := json.NewEncoder(w).Encode(sessionList); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	case "POST":
		h.handleCreateSession(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageDir       string `json:"image_dir"`
		AnnotationPath string `json:"annotation_path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		slog.Error("Unable to decode session request", "err", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if request.ImageDir == "" {
		request.ImageDir = h.cfg.ImageDir
	}
	if request.AnnotationPath == "" {
		request.AnnotationPath = h.cfg.AnnotationPath
	}

	doc, err := coco.Load(request.AnnotationPath)
	if err != nil {
		utils.RespondWithError(w, "Failed to load annotations: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Use annotation filename (without extension) as session name, with timestamp for uniqueness
	baseFilename := strings.TrimSuffix(filepath.Base(request.AnnotationPath), filepath.Ext(request.AnnotationPath))
	sessionID := fmt.Sprintf("%s_%d", baseFilename, time.Now().Unix())
	session := &models.ReviewSession{
		ID:              sessionID,
		ImageDir:        request.ImageDir,
		AnnotationPath:  request.AnnotationPath,
		Doc:             doc,
		Records:         doc.BuildIndex(),
		CategoryNames:   doc.CategoryNames(),
		Classifications: make(models.ClassificationMap),
		Cursor:          0,
		CreatedAt:       time.Now(),
	}

	h.sessionStore.Set(sessionID, session)
	h.navigator(session).Render()

	slog.Info("Review session created", "session_id", sessionID, "images", len(session.Records))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot(session)); err != nil {
		slog.Error("Unable to encode session data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	sessionID := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	switch action {
	case "":
		h.handleSessionRoot(w, r, session)
	case "navigate":
		h.handleNavigate(w, r, session)
	case "classify":
		h.handleClassify(w, r, session)
	case "progress/export":
		h.handleProgressExport(w, r, session)
	case "progress/import":
		h.handleProgressImport(w, r, session)
	case "frame":
		h.handleFrame(w, r, session)
	case "metrics":
		h.handleMetrics(w, r, session)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleSessionRoot(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	switch r.Method {
	case "GET":
		if err := json.NewEncoder(w).Encode(h.snapshot(session)); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	case "DELETE":
		h.sessionStore.Delete(session.ID)
		h.frames.Delete(session.ID)
		slog.Info("Review session deleted", "session_id", session.ID)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "deleted"}); err != nil {
			slog.Error("Unable to encode success", "err", err)
			http.Error(w, "Invalid JSON", http.StatusInternalServerError)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Direction string `json:"direction"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	nav := h.navigator(session)
	switch request.Direction {
	case "next":
		nav.Advance()
	case "prev":
		nav.Retreat()
	default:
		utils.RespondWithError(w, "direction must be \"next\" or \"prev\"", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot(session)); err != nil {
		slog.Error("Unable to encode session data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

// handleClassify applies a label to the current record. A null label leaves
// the selection alone, so {"advance": true} by itself is the space-bar path;
// "quick" is the number-key path and requires a label.
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Label   *string `json:"label"`
		Quick   bool    `json:"quick"`
		Advance bool    `json:"advance"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if request.Label == nil && request.Quick {
		utils.RespondWithError(w, "label is required for quick classify", http.StatusBadRequest)
		return
	}

	nav := h.navigator(session)
	if request.Label != nil {
		label, ok := models.ParseLabel(*request.Label)
		if !ok {
			utils.RespondWithError(w, fmt.Sprintf("unknown label %q", *request.Label), http.StatusBadRequest)
			return
		}
		if request.Quick {
			nav.QuickClassify(label)
		} else {
			nav.Classify(label)
		}
	}
	if request.Advance {
		nav.SaveAndAdvance()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot(session)); err != nil {
		slog.Error("Unable to encode session data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

func (h *Handler) progressPath(session *models.ReviewSession, requested string) string {
	if requested != "" {
		return requested
	}
	return filepath.Join(h.cfg.ProgressDir, session.ID+".txt")
}

func (h *Handler) handleProgressExport(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	path := h.progressPath(session, request.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		utils.RespondWithError(w, "Failed to create progress directory: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := storage.ExportProgress(path, session.Classifications); err != nil {
		utils.RespondWithError(w, "Failed to export progress: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Progress exported", "session_id", session.ID, "path", path, "entries", len(session.Classifications))

	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{
		"status":  "exported",
		"path":    path,
		"entries": len(session.Classifications),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Unable to encode response data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

func (h *Handler) handleProgressImport(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	path := h.progressPath(session, request.Path)
	imported, err := storage.ImportProgress(path)
	if err != nil {
		utils.RespondWithError(w, "Failed to import progress: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.navigator(session).Merge(imported)

	slog.Info("Progress imported", "session_id", session.ID, "path", path, "entries", len(imported))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot(session)); err != nil {
		slog.Error("Unable to encode session data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, exists := h.frames.Get(session.ID)
	if !exists {
		// The session may predate the last render, so try once on demand.
		h.navigator(session).Render()
		frame, exists = h.frames.Get(session.ID)
		if !exists {
			http.Error(w, "No frame available", http.StatusNotFound)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(frame); err != nil {
		slog.Error("Unable to write frame", "session_id", session.ID, "err", err)
	}
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request, session *models.ReviewSession) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary := metrics.Summarize(session.Doc)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("Unable to encode metrics data", "err", err)
		http.Error(w, "Invalid JSON", http.StatusInternalServerError)
	}
}

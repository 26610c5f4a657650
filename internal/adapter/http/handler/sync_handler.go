package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iho/banksync/internal/adapter/http/dto"
	"github.com/iho/banksync/internal/adapter/http/middleware"
	"github.com/iho/banksync/internal/domain"
)

// streamInterval paces the MJPEG stream. Frames are sampled twice a
// second upstream, so pushing faster only duplicates bytes.
const streamInterval = 500 * time.Millisecond

// SyncService is the orchestration surface the sync handler needs.
type SyncService interface {
	Start(cfg domain.SyncConfig) error
	Stop(ctx context.Context) error
	Status() domain.RunSnapshot
	Frame() []byte
}

// SettingsSource loads a user's stored sync settings.
type SettingsSource interface {
	Get(ctx context.Context, userID string) (*domain.Settings, error)
}

// SyncHandler handles sync run endpoints
type SyncHandler struct {
	sync     SyncService
	settings SettingsSource
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync SyncService, settings SettingsSource) *SyncHandler {
	return &SyncHandler{sync: sync, settings: settings}
}

// Status returns the current run snapshot
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.StatusFromDomain(h.sync.Status()))
}

// Start begins a sync run using the caller's stored settings
func (h *SyncHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	settings, err := h.settings.Get(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load settings", err.Error())
		return
	}

	cfg := settings.SyncConfig()

	// Optional date-range override. An empty body is fine.
	var req dto.StartSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.FromDate != "" {
		if cfg.FromDate, err = time.Parse("2006-01-02", req.FromDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from_date", err.Error())
			return
		}
	}
	if req.ToDate != "" {
		if cfg.ToDate, err = time.Parse("2006-01-02", req.ToDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to_date", err.Error())
			return
		}
	}

	if err := h.sync.Start(cfg); err != nil {
		writeError(w, mapDomainError(err), "failed to start sync", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.StatusFromDomain(h.sync.Status()))
}

// Stop cancels the running sync, if any
func (h *SyncHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stop sync", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.StatusFromDomain(h.sync.Status()))
}

// Stream serves the browser telemetry feed as an MJPEG stream
func (h *SyncHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			frame := h.sync.Frame()
			if len(frame) == 0 {
				continue
			}
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := io.WriteString(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

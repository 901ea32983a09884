package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quickinstall/installstats/internal/service"
	"github.com/quickinstall/installstats/internal/tarball"
)

// msgNoIdentifier is returned when the request carries no archive name.
const msgNoIdentifier = "Could not extract crate information from request"

// InstallRecorder records install reports.
type InstallRecorder interface {
	Record(ctx context.Context, input service.RecordInput) (*service.RecordResult, error)
	Architectures() []string
}

// InstallHandler handles install reports from the installer.
type InstallHandler struct {
	svc    InstallRecorder
	logger *slog.Logger
}

// NewInstallHandler creates a new InstallHandler.
func NewInstallHandler(svc InstallRecorder, logger *slog.Logger) *InstallHandler {
	return &InstallHandler{
		svc:    svc,
		logger: logger.With("component", "handler.install"),
	}
}

// ArchitecturesResponse lists the architectures install reports are matched against.
type ArchitecturesResponse struct {
	Architectures []string `json:"architectures"`
}

// Record handles GET /api/crate/{tarball}.
//
// Rejections use 403 with a plain text body; installers print it verbatim.
func (h *InstallHandler) Record(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tarball")
	if name == "" {
		writeText(w, http.StatusForbidden, msgNoIdentifier)
		return
	}

	result, err := h.svc.Record(r.Context(), service.RecordInput{
		Tarball: name,
		Agent:   r.URL.Query().Get("agent"),
	})
	if err != nil {
		h.handleRecordError(w, name, err)
		return
	}

	h.logger.Info("install_reported",
		"crate", result.Event.Package,
		"version", result.Event.Version,
		"target", result.Event.Architecture,
		"count", result.Count,
	)

	writeText(w, http.StatusOK, result.Message())
}

func (h *InstallHandler) handleRecordError(w http.ResponseWriter, name string, err error) {
	var archErr *tarball.UnknownArchitectureError

	switch {
	case errors.As(err, &archErr):
		h.logger.Info("install_rejected", "tarball", name, "reason", "unknown_architecture")
		writeText(w, http.StatusForbidden, fmt.Sprintf(
			"Could not extract architecture from %s. Supported architectures are: %s",
			archErr.Key, strings.Join(archErr.Known, ", "),
		))

	case errors.Is(err, service.ErrMalformedInput):
		h.logger.Info("install_rejected", "tarball", name, "reason", "malformed")
		writeText(w, http.StatusForbidden, msgNoIdentifier)

	default:
		h.logger.Error("install_error", "tarball", name, "error", err)
		writeText(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// Architectures handles GET /api/architectures.
func (h *InstallHandler) Architectures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ArchitecturesResponse{Architectures: h.svc.Architectures()})
}

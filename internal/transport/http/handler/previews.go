package handler

import (
	"context"
	"net/http"

	"github.com/thlight-panel/internal/domain"
)

type previewReader interface {
	ListFor(ctx context.Context, recipient string) ([]domain.PreviewEntry, error)
	LatestOTPFor(ctx context.Context, recipient string) (domain.LatestOTP, error)
}

// PreviewHandler exposes the simulated inbox.
type PreviewHandler struct {
	previews previewReader
}

func NewPreviewHandler(previews previewReader) *PreviewHandler {
	return &PreviewHandler{previews: previews}
}

func (h *PreviewHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email parameter is required")
		return
	}
	entries, err := h.previews.ListFor(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	out := PreviewsEnvelope{Emails: make([]PreviewItem, 0, len(entries))}
	for _, e := range entries {
		out.Emails = append(out.Emails, PreviewItem{
			ID:        e.ID,
			Subject:   e.Subject,
			Content:   e.Body,
			Timestamp: e.CreatedAt.UnixMilli(),
			TimeAgo:   e.TimeAgo,
			OTP:       e.Code,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PreviewHandler) LatestOTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email parameter is required")
		return
	}
	latest, err := h.previews.LatestOTPFor(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	if !latest.Found {
		writeJSON(w, http.StatusOK, LatestOTPEnvelope{Message: "No OTP found"})
		return
	}
	out := LatestOTPEnvelope{Expired: &latest.Expired, TimeAgo: latest.TimeAgo}
	if !latest.Expired {
		out.OTP = &latest.Code
	}
	writeJSON(w, http.StatusOK, out)
}

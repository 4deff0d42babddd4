package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/auth"
)

// WhoamiHandler handles whoami requests
type WhoamiHandler struct {
	logger *slog.Logger
}

// NewWhoamiHandler creates a new whoami handler
func NewWhoamiHandler(logger *slog.Logger) *WhoamiHandler {
	return &WhoamiHandler{
		logger: logger,
	}
}

// GetWhoami handles GET /whoami
// The route sits behind the bearer middleware, which puts the user in the context.
func (h *WhoamiHandler) GetWhoami(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.logger.Error("Whoami reached without an authenticated user")
		apierrors.WriteError(w, apierrors.MsgMissingToken, http.StatusUnauthorized)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, user.Profile())
}

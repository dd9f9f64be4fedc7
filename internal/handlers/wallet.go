package handlers

import (
	"net/http"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/common/validation"
	"miniapp-auth/internal/middleware"
)

// WalletRequest is the optional body of POST /api/wallet
type WalletRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,telegram_username"`
}

// Wallet returns the wallet of the session user, creating the Openfort
// player and account on first use. Must be mounted behind RequireSession.
func (h *Handlers) Wallet(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		h.sendError(w, errors.UnavailableError("wallet provisioning").WithCode("wallet_disabled"))
		return
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.sendError(w, errors.AuthError("missing session token").WithCode("missing_session"))
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		h.sendError(w, errors.AuthError("invalid session token").WithCode("invalid_session"))
		return
	}

	var req WalletRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		h.sendError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.sendError(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = claims.Username
	}

	logger := h.logger.WithContext(r.Context())

	result, err := h.provisioner.Provision(r.Context(), userID, username)
	h.recorder.Provisioned(err)
	if err != nil {
		logger.Error("Wallet provisioning failed", err)
		h.sendError(w, errors.InternalError("failed to create wallet", err).WithCode("wallet_failed"))
		return
	}

	logger.Info("Wallet provisioned",
		logging.String("player_id", result.PlayerID),
		logging.Int64("chain_id", result.ChainID),
	)
	h.sendJSONResponse(w, result)
}

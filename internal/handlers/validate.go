package handlers

import (
	"net/http"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/common/validation"
	"miniapp-auth/internal/initdata"
)

// ValidateRequest is the body of POST /api/validate
type ValidateRequest struct {
	InitData string `json:"initData" validate:"required,max=8192"`
}

// ValidateResponse describes an accepted launch payload and the session issued for it
type ValidateResponse struct {
	Valid        bool   `json:"valid"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
	IsPremium    bool   `json:"isPremium"`
	AuthDate     int64  `json:"authDate"`
	StartParam   string `json:"startParam,omitempty"`
	Token        string `json:"token"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Validate verifies a launch payload and issues a session token
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.sendError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.sendError(w, err)
		return
	}

	verdict := h.verifier.Verify(req.InitData)
	h.recorder.Verified(verdict.Accepted, string(verdict.Reason))

	if !verdict.Accepted {
		h.logger.WithContext(r.Context()).Info("Init data rejected",
			logging.String("kind", verdict.Reason.String()),
		)
		h.sendError(w, initdata.AsAppError(verdict.Err()))
		return
	}

	user := verdict.Identity
	token, expiresAt, err := h.sessions.Issue(user.ID, user.FirstName, user.Username)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to issue session", err)
		h.sendError(w, errors.InternalError("failed to issue session", err))
		return
	}

	h.logger.WithContext(r.Context()).Debug("Init data accepted",
		logging.Int64("user_id", user.ID),
	)

	h.sendJSONResponse(w, ValidateResponse{
		Valid:        true,
		UserID:       user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		LanguageCode: user.LanguageCode,
		IsPremium:    user.IsPremium,
		AuthDate:     verdict.Params.AuthDate.Unix(),
		StartParam:   verdict.Params.StartParam,
		Token:        token,
		ExpiresAt:    expiresAt.Unix(),
	})
}

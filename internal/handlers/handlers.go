// Package handlers implements the HTTP API: launch payload validation,
// wallet provisioning and health reporting.
package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"sort"
	"time"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/initdata"
	"miniapp-auth/internal/session"
	"miniapp-auth/internal/wallet"
)

// maxBodyBytes bounds request bodies. Launch payloads are a few KB at most.
const maxBodyBytes = 64 << 10

// Verifier checks launch payloads
type Verifier interface {
	Verify(raw string) initdata.Verdict
}

// SessionIssuer mints session tokens for verified users
type SessionIssuer interface {
	Issue(userID int64, firstName, username string) (string, time.Time, error)
}

// WalletProvisioner resolves the wallet of a Telegram user
type WalletProvisioner interface {
	Provision(ctx context.Context, telegramID int64, username string) (*wallet.Wallet, error)
}

// Recorder receives outcome counters
type Recorder interface {
	Verified(accepted bool, kind string)
	Provisioned(err error)
}

// HealthChecker is any dependency that can report its health
type HealthChecker interface {
	Health() error
}

// Options configures Handlers. Provisioner, Recorder and Components are optional.
type Options struct {
	Verifier    Verifier
	Sessions    SessionIssuer
	Provisioner WalletProvisioner
	Recorder    Recorder
	Components  map[string]HealthChecker
	Logger      logging.Logger
}

type Handlers struct {
	verifier    Verifier
	sessions    SessionIssuer
	provisioner WalletProvisioner
	recorder    Recorder
	components  map[string]HealthChecker
	logger      logging.Logger
}

func New(opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Handlers{
		verifier:    opts.Verifier,
		sessions:    opts.Sessions,
		provisioner: opts.Provisioner,
		recorder:    recorder,
		components:  opts.Components,
		logger:      logger,
	}
}

type noopRecorder struct{}

func (noopRecorder) Verified(bool, string) {}
func (noopRecorder) Provisioned(error)     {}

// errorResponse is the body of every non-2xx answer
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handlers) sendJSONResponse(w http.ResponseWriter, data interface{}) {
	h.sendJSONStatus(w, http.StatusOK, data)
}

func (h *Handlers) sendJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}

// sendError answers with the status and client-safe message of err
func (h *Handlers) sendError(w http.ResponseWriter, err error) {
	code := string(errors.GetType(err))
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code != "" {
		code = appErr.Code
	}

	h.sendJSONStatus(w, errors.HTTPStatus(err), errorResponse{
		Error: errors.PublicMessage(err),
		Code:  code,
	})
}

// decodeBody reads a JSON object into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return errors.ValidationError("request body is required").WithCode("invalid_request")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF && allowEmpty {
			return nil
		}
		return errors.ValidationError("request body must be a JSON object").WithCode("invalid_request")
	}
	return nil
}

func sortedNames(components map[string]HealthChecker) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ SessionIssuer = (*session.Manager)(nil)

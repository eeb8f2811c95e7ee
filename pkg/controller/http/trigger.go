package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/utils/async"
)

// TriggerHandler starts a post run on demand (the manual-dispatch
// path). The run happens in the background; the response only
// acknowledges that it started.
type TriggerHandler struct {
	token    string
	runner   interfaces.PostRunner
	notifier interfaces.FailureNotifier
}

// NewTriggerHandler creates a TriggerHandler. token may be empty, in
// which case the endpoint is open (bind to localhost in that case).
func NewTriggerHandler(token string, runner interfaces.PostRunner, notifier interfaces.FailureNotifier) *TriggerHandler {
	return &TriggerHandler{
		token:    token,
		runner:   runner,
		notifier: notifier,
	}
}

// Handle processes trigger requests
func (h *TriggerHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if !h.authorized(r) {
		logger.Warn("Rejected trigger request with bad token")
		writeError(w, goerr.New("invalid token"), http.StatusUnauthorized)
		return
	}

	logger.Info("Trigger accepted, starting post run")
	async.Dispatch(ctx, func(ctx context.Context) error {
		run := h.runner.Run(ctx)
		if run.Failed() && h.notifier != nil {
			if err := h.notifier.NotifyFailure(ctx, run); err != nil {
				ctxlog.From(ctx).Error("Failed to send failure notification", "error", err)
			}
		}
		return run.Err
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
	}); err != nil {
		logger.Error("Failed to encode trigger response", "error", err)
	}
}

func (h *TriggerHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(auth), []byte(h.token)) == 1
}

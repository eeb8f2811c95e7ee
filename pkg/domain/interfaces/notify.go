package interfaces

import (
	"context"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// FailureNotifier reports failed post runs to an operator channel.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, run *model.PostRun) error
}

package interfaces

import (
	"context"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// PostRunner executes one render-and-post run. The returned record
// always carries the outcome; a failed run has Err set.
type PostRunner interface {
	Run(ctx context.Context) *model.PostRun
}

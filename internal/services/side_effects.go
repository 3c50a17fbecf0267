package services

import (
	"context"

	"github.com/teamflow/crm-api/pkg/utils"
)

// fireAndForget runs a best-effort side effect. Failures are logged and
// swallowed: automation and audit writes must never affect the outcome of
// the primary mutation that triggered them.
func fireAndForget(ctx context.Context, op string, fn func() error) {
	if err := fn(); err != nil {
		utils.LogError(ctx, "side effect failed", err, utils.LogFields{
			"op": op,
		})
	}
}

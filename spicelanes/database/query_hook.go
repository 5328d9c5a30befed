package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/spicelanes/game-server/spicelanes/logger"
)

// queryHook reports every bun query through the shared logger so slow or
// failing statements show up in the DB log category.
type queryHook struct{}

var _ bun.QueryHook = (*queryHook)(nil)

func (queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	logger.LogQuery(event.Query, time.Since(event.StartTime), event.Err)
}

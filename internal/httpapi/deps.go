package httpapi

import (
	"context"
	"sync/atomic"
	"time"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/catalog"
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/poll"
	"daymark-engine/internal/rank"
	"daymark-engine/internal/store"
	"daymark-engine/internal/timeshift"
)

// BusySource pulls a day's busy time from an external calendar.
type BusySource interface {
	BusySlots(ctx context.Context, date string, loc *time.Location) ([]domain.BusySlot, error)
}

type Deps struct {
	// BaseCtx outlives requests; background fetches started over HTTP run
	// under it.
	BaseCtx context.Context

	Store     *store.DB
	Catalog   *catalog.Catalog
	Ranker    *rank.Cache
	Engine    *assign.Engine
	Schedules *timeshift.Cache
	Runner    *poll.Runner
	Calendar  BusySource
	Hub       *events.Hub

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	// OnConfig is called after a new config is saved and stored.
	OnConfig func(config.Config)

	Now func() time.Time
}

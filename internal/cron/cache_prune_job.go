package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type cachePruner interface {
	PruneExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewCachePruneJob builds the job that deletes long-expired vehicle identity
// rows. Recently expired rows are kept so a re-lookup can reuse the row id.
func NewCachePruneJob(logg *logger.Logger, identities cachePruner, olderThan time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if identities == nil {
		return nil, fmt.Errorf("identity pruner required")
	}
	if olderThan <= 0 {
		return nil, fmt.Errorf("prune age must be positive")
	}
	return &cachePruneJob{logg: logg, identities: identities, olderThan: olderThan}, nil
}

type cachePruneJob struct {
	logg       *logger.Logger
	identities cachePruner
	olderThan  time.Duration
}

func (j *cachePruneJob) Name() string { return "identity-cache-prune" }

func (j *cachePruneJob) Run(ctx context.Context) error {
	pruned, err := j.identities.PruneExpired(ctx, j.olderThan)
	if err != nil {
		return fmt.Errorf("pruning identity cache: %w", err)
	}
	if pruned > 0 {
		j.logg.Info(j.logg.WithField(ctx, "pruned", pruned), "cron.identity_cache_pruned")
	}
	return nil
}

package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// RegistryClient looks a plate or VIN up against the national vehicle
// registry. Calls are billed per lookup, success or failure.
type RegistryClient interface {
	Lookup(ctx context.Context, plateOrVIN string) (*types.VehicleIdentity, error)
}

// Repository persists cached identities and the append-only lookup log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindIdentityByPlate(ctx context.Context, plate string) (*models.VehicleIdentity, error)
	UpsertIdentity(ctx context.Context, identity *models.VehicleIdentity) error
	TouchIdentity(ctx context.Context, id uuid.UUID, at time.Time) error
	AppendLookupLog(ctx context.Context, log *models.LookupLog) error
	CountLookupsByIPSince(ctx context.Context, ip string, since time.Time) (int64, error)
	CountLookupsByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) (int64, error)
	DeleteIdentitiesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service is the quota-enforcing, cache-first lookup boundary.
type Service interface {
	Lookup(ctx context.Context, input LookupInput) (*LookupResult, error)
	PruneExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

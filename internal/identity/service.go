package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/enums"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// LookupInput is one inbound plate/VIN lookup request.
type LookupInput struct {
	PlateOrVIN  string
	Fingerprint *string
	RequesterIP string
	// Honeypot carries the hidden form field. Humans leave it empty.
	Honeypot string
}

// LookupResult is the identity plus whether the cache answered.
type LookupResult struct {
	Identity types.VehicleIdentity `json:"vehicleIdentity"`
	CacheHit bool                  `json:"cacheHit"`
}

type service struct {
	repo     Repository
	registry RegistryClient
	cfg      config.IdentityConfig
	loc      *time.Location
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo     Repository
	Registry RegistryClient
	Config   config.IdentityConfig
	Location *time.Location
	Logger   *logger.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewService builds the identity lookup service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	if p.Registry == nil {
		return nil, fmt.Errorf("registry client required")
	}
	if p.Location == nil {
		return nil, fmt.Errorf("business location required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:     p.Repo,
		registry: p.Registry,
		cfg:      p.Config,
		loc:      p.Location,
		logg:     p.Logger,
		now:      p.Now,
	}, nil
}

// NormalizePlate uppercases and strips everything but letters and digits.
func NormalizePlate(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HashPlate is the audit-log form of a plate. Raw plates never hit the log.
func HashPlate(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func (s *service) Lookup(ctx context.Context, input LookupInput) (*LookupResult, error) {
	if input.Honeypot != "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request rejected")
	}

	plate := NormalizePlate(input.PlateOrVIN)
	if len(plate) < 2 || len(plate) > 17 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate or VIN is not recognizable")
	}
	plateHash := HashPlate(plate)
	ctx = s.logg.WithPlateHash(ctx, plateHash)

	now := s.now()
	if err := s.enforceQuotas(ctx, input, now); err != nil {
		return nil, err
	}

	cached, err := s.repo.FindIdentityByPlate(ctx, plate)
	switch {
	case err == nil && cached.ExpiresAt.After(now):
		if err := s.repo.TouchIdentity(ctx, cached.ID, now); err != nil {
			s.logg.Error(ctx, "identity.cache_touch_failed", err)
		}
		s.appendLog(ctx, input, plateHash, enums.LookupSourceCache, enums.LookupStatusSuccess, 0)
		return &LookupResult{Identity: identityFromModel(cached), CacheHit: true}, nil

	case err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "identity cache unavailable")
	}

	// Miss or expired row. One billed registry call, no retry.
	fresh, lookupErr := s.registry.Lookup(ctx, plate)
	if lookupErr != nil {
		s.appendLog(ctx, input, plateHash, enums.LookupSourceRegistry, enums.LookupStatusFailure, s.cfg.LookupCostCents)
		s.logg.Error(ctx, "identity.registry_lookup_failed", lookupErr)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, lookupErr, "vehicle lookup failed")
	}
	fresh.Plate = plate

	row := modelFromIdentity(fresh, now.Add(s.cfg.CacheTTL))
	if cached != nil {
		row.ID = cached.ID
	}
	if err := s.repo.UpsertIdentity(ctx, row); err != nil {
		// The registry call is already billed; log the answer anyway.
		s.logg.Error(ctx, "identity.cache_upsert_failed", err)
	}
	s.appendLog(ctx, input, plateHash, enums.LookupSourceRegistry, enums.LookupStatusSuccess, s.cfg.LookupCostCents)

	return &LookupResult{Identity: *fresh, CacheHit: false}, nil
}

// PruneExpired removes cache rows whose expiry passed more than olderThan
// ago. Lookup logs are never touched.
func (s *service) PruneExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteIdentitiesExpiredBefore(ctx, s.now().Add(-olderThan))
}

// Quota days roll over at business-timezone midnight, not UTC midnight.
func (s *service) enforceQuotas(ctx context.Context, input LookupInput, now time.Time) error {
	local := now.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)

	ipCount, err := s.repo.CountLookupsByIPSince(ctx, input.RequesterIP, midnight)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "quota check failed")
	}
	if ipCount >= s.cfg.IPDailyLimit {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "daily lookup limit reached for this address")
	}

	if input.Fingerprint != nil && *input.Fingerprint != "" {
		fpCount, err := s.repo.CountLookupsByFingerprintSince(ctx, *input.Fingerprint, midnight)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "quota check failed")
		}
		if fpCount >= s.cfg.FingerprintDailyLimit {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "daily lookup limit reached for this device")
		}
	}
	return nil
}

func (s *service) appendLog(ctx context.Context, input LookupInput, plateHash string, source enums.LookupSource, status enums.LookupStatus, costCents int64) {
	entry := &models.LookupLog{
		PlateHash:   plateHash,
		RequesterIP: input.RequesterIP,
		Fingerprint: input.Fingerprint,
		Source:      source,
		Status:      status,
		CostCents:   costCents,
	}
	if err := s.repo.AppendLookupLog(ctx, entry); err != nil {
		s.logg.Error(ctx, "identity.lookup_log_append_failed", err)
	}
}

func identityFromModel(m *models.VehicleIdentity) types.VehicleIdentity {
	return types.VehicleIdentity{
		Plate:              m.Plate,
		VIN:                m.VIN,
		Make:               m.Make,
		Model:              m.Model,
		Year:               m.Year,
		FuelType:           m.FuelType,
		PowerKW:            m.PowerKW,
		BodyStyle:          m.BodyStyle,
		GrossVehicleMassKG: m.GrossVehicleMassKG,
	}
}

func modelFromIdentity(identity *types.VehicleIdentity, expiresAt time.Time) *models.VehicleIdentity {
	return &models.VehicleIdentity{
		Plate:              identity.Plate,
		VIN:                identity.VIN,
		Make:               identity.Make,
		Model:              identity.Model,
		Year:               identity.Year,
		FuelType:           identity.FuelType,
		PowerKW:            identity.PowerKW,
		BodyStyle:          identity.BodyStyle,
		GrossVehicleMassKG: identity.GrossVehicleMassKG,
		ExpiresAt:          expiresAt,
	}
}

package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an identity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindIdentityByPlate(ctx context.Context, plate string) (*models.VehicleIdentity, error) {
	var identity models.VehicleIdentity
	err := r.db.WithContext(ctx).
		Where("plate = ?", plate).
		First(&identity).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *repository) UpsertIdentity(ctx context.Context, identity *models.VehicleIdentity) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plate"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"vin", "make", "model", "year", "fuel_type", "power_kw",
				"body_style", "gross_vehicle_mass_kg", "expires_at", "updated_at",
			}),
		}).
		Create(identity).Error
}

func (r *repository) TouchIdentity(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.VehicleIdentity{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"lookup_count":   gorm.Expr("lookup_count + 1"),
			"last_access_at": at,
		}).Error
}

func (r *repository) AppendLookupLog(ctx context.Context, log *models.LookupLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) CountLookupsByIPSince(ctx context.Context, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LookupLog{}).
		Where("requester_ip = ? AND created_at >= ?", ip, since).
		Count(&count).Error
	return count, err
}

func (r *repository) CountLookupsByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LookupLog{}).
		Where("fingerprint = ? AND created_at >= ?", fingerprint, since).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteIdentitiesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.VehicleIdentity{})
	return result.RowsAffected, result.Error
}

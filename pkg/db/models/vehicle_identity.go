package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleIdentity caches one registry answer keyed by normalized plate. Rows
// are reused until ExpiresAt, then refreshed from the registry on demand.
type VehicleIdentity struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Plate              string     `gorm:"column:plate;not null;uniqueIndex"`
	VIN                string     `gorm:"column:vin"`
	Make               string     `gorm:"column:make;not null"`
	Model              string     `gorm:"column:model;not null"`
	Year               int        `gorm:"column:year;not null"`
	FuelType           string     `gorm:"column:fuel_type;not null"`
	PowerKW            int        `gorm:"column:power_kw;not null"`
	BodyStyle          string     `gorm:"column:body_style;not null"`
	GrossVehicleMassKG int        `gorm:"column:gross_vehicle_mass_kg;not null;default:0"`
	ExpiresAt          time.Time  `gorm:"column:expires_at;not null;index"`
	LookupCount        int64      `gorm:"column:lookup_count;not null;default:0"`
	LastAccessAt       *time.Time `gorm:"column:last_access_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (VehicleIdentity) TableName() string { return "vehicle_identities" }

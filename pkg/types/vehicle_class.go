package types

import "github.com/velocimech/velocimech-backend/pkg/enums"

// VehicleClass is the derived pricing classification of a vehicle identity.
// It is always recomputed from identity fields, never stored on its own.
type VehicleClass struct {
	Fuel  enums.FuelClass `json:"fuel"`
	Body  enums.BodyClass `json:"body"`
	Load  enums.LoadClass `json:"load"`
	Power enums.PowerBand `json:"power"`
}

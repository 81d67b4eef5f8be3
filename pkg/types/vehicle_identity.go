package types

// VehicleIdentity is the registry answer for one plate/VIN, as used by the
// quote pipeline. Classification derives from these fields alone.
type VehicleIdentity struct {
	Plate              string `json:"plate"`
	VIN                string `json:"vin,omitempty"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	FuelType           string `json:"fuelType"`
	PowerKW            int    `json:"powerKw"`
	BodyStyle          string `json:"bodyStyle"`
	GrossVehicleMassKG int    `json:"grossVehicleMassKg"`
}

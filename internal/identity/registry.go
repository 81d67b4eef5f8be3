package identity

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// registryClient calls the vehicle registry over mutually-authenticated TLS.
// The registry bills per call, so this client never retries.
type registryClient struct {
	baseURL string
	http    *http.Client
}

// NewRegistryClient builds the registry HTTP client from config. The client
// certificate pair is required; the CA bundle is optional and falls back to
// the system pool.
func NewRegistryClient(cfg config.IdentityConfig) (RegistryClient, error) {
	if cfg.RegistryBaseURL == "" {
		return nil, fmt.Errorf("registry base URL required")
	}

	cert, err := tls.LoadX509KeyPair(cfg.RegistryClientCert, cfg.RegistryClientKey)
	if err != nil {
		return nil, fmt.Errorf("loading registry client certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.RegistryCACert != "" {
		caPEM, err := os.ReadFile(cfg.RegistryCACert)
		if err != nil {
			return nil, fmt.Errorf("reading registry CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("registry CA bundle contains no certificates")
		}
		tlsConfig.RootCAs = pool
	}

	return &registryClient{
		baseURL: cfg.RegistryBaseURL,
		http: &http.Client{
			Timeout:   cfg.RegistryTimeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
	}, nil
}

type registryVehicle struct {
	Plate              string `json:"plate"`
	VIN                string `json:"vin"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	FuelType           string `json:"fuel_type"`
	PowerKW            int    `json:"power_kw"`
	BodyStyle          string `json:"body_style"`
	GrossVehicleMassKG int    `json:"gross_vehicle_mass_kg"`
}

func (c *registryClient) Lookup(ctx context.Context, plateOrVIN string) (*types.VehicleIdentity, error) {
	endpoint := fmt.Sprintf("%s/v1/vehicles/%s", c.baseURL, url.PathEscape(plateOrVIN))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("registry has no record for %q", plateOrVIN)
	default:
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var vehicle registryVehicle
	if err := json.NewDecoder(resp.Body).Decode(&vehicle); err != nil {
		return nil, fmt.Errorf("decoding registry response: %w", err)
	}

	return &types.VehicleIdentity{
		Plate:              vehicle.Plate,
		VIN:                vehicle.VIN,
		Make:               vehicle.Make,
		Model:              vehicle.Model,
		Year:               vehicle.Year,
		FuelType:           vehicle.FuelType,
		PowerKW:            vehicle.PowerKW,
		BodyStyle:          vehicle.BodyStyle,
		GrossVehicleMassKG: vehicle.GrossVehicleMassKG,
	}, nil
}

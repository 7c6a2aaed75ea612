package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BusLocation binds a network bus to the market-data location that feeds
// its exogenous price or load series.
type BusLocation struct {
	Bus        string `json:"bus"`
	LocationID string `json:"location_id"`
	Market     string `json:"market"`      // e.g. "CAISO"
	DatasetID  string `json:"dataset_id"`  // dataset this location's series comes from
}

// BusLocationMap is a saved bus-to-location binding set for one scenario.
type BusLocationMap struct {
	Market    string        `json:"market"`
	UpdatedAt string        `json:"updated_at"` // ISO 8601 timestamp
	Locations []BusLocation `json:"locations"`
}

// LoadBusLocations reads a bus-to-location binding set from a JSON file.
func LoadBusLocations(filePath string) (*BusLocationMap, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bus-locations file: %w", err)
	}
	var list BusLocationMap
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse bus-locations file: %w", err)
	}
	return &list, nil
}

// SaveBusLocations writes a bus-to-location binding set to a JSON file.
func SaveBusLocations(list *BusLocationMap, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bus-locations: %w", err)
	}
	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write bus-locations file: %w", err)
	}
	return nil
}

// ByBus indexes a BusLocationMap for lookup during scenario construction.
func (l *BusLocationMap) ByBus() map[string]BusLocation {
	out := make(map[string]BusLocation, len(l.Locations))
	for _, loc := range l.Locations {
		out[loc.Bus] = loc
	}
	return out
}

// GetDefaultBusLocationsPath returns the default path for the bus-location
// binding file, honoring the BUS_LOCATIONS_FILE environment variable.
func GetDefaultBusLocationsPath() string {
	if path := os.Getenv("BUS_LOCATIONS_FILE"); path != "" {
		return path
	}
	return "./data/bus_locations.json"
}

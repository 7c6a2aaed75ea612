package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lopf/internal/marketdata"
)

// update-locations refreshes a bus-to-market-location binding file: for
// every bus already bound to a location, it confirms the dataset still
// returns data for that location and rewrites the file with a fresh
// updated_at timestamp. It never invents new bus bindings — those are
// added by hand to the seed file, since only a human knows which market
// node feeds a given bus.
func main() {
	var (
		seedFile = flag.String("seed", "", "Path to the bus-locations file to refresh (default: marketdata.GetDefaultBusLocationsPath())")
		days     = flag.Int("days", 7, "Number of days to look back when confirming a location still has data")
	)
	flag.Parse()

	apiKey := os.Getenv("MARKETDATA_API_KEY")
	if apiKey == "" {
		log.Fatal("MARKETDATA_API_KEY environment variable is required")
	}

	path := *seedFile
	if path == "" {
		path = marketdata.GetDefaultBusLocationsPath()
	}

	list, err := marketdata.LoadBusLocations(path)
	if err != nil {
		log.Fatalf("failed to load bus locations from %s: %v", path, err)
	}

	client := marketdata.NewClient(apiKey, "")
	endTime := time.Now()
	startTime := endTime.AddDate(0, 0, -*days)

	confirmed := 0
	for i, loc := range list.Locations {
		resp, err := client.Query(marketdata.QueryParams{
			DatasetID:  loc.DatasetID,
			LocationID: loc.LocationID,
			StartTime:  startTime,
			EndTime:    endTime,
			Timezone:   "market",
		})
		if err != nil {
			fmt.Printf("  warning: bus %s (%s/%s): %v\n", loc.Bus, loc.DatasetID, loc.LocationID, err)
			continue
		}
		if len(resp.Data) == 0 {
			fmt.Printf("  warning: bus %s (%s/%s): no data in lookback window\n", loc.Bus, loc.DatasetID, loc.LocationID)
			continue
		}
		list.Locations[i].Market = resp.Data[0].Market
		confirmed++
		fmt.Printf("  confirmed: bus %s -> %s (%s)\n", loc.Bus, loc.LocationID, resp.Data[0].Market)
	}

	list.UpdatedAt = time.Now().Format(time.RFC3339)
	if err := marketdata.SaveBusLocations(list, path); err != nil {
		log.Fatalf("failed to save bus locations to %s: %v", path, err)
	}

	fmt.Printf("confirmed %d/%d bindings, wrote %s\n", confirmed, len(list.Locations), path)
}

package sources

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// weatherTimeout is shorter than the main fetch timeout: weather is an
// optional axis and must never hold up the density pipeline.
const weatherTimeout = 10 * time.Second

var weatherClient = &http.Client{Timeout: weatherTimeout}

// FetchDailyTemps loads daily mean temperatures for the deployment area over
// the season, aligned with the given date range. Any failure degrades to a
// nil series with a log line; callers proceed without the weather axis.
func FetchDailyTemps(url string, lat, lon float64, start, end time.Time) []float64 {
	full := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%s&end_date=%s&daily=temperature_2m_mean&timezone=UTC",
		url, lat, lon, start.Format("2006-01-02"), end.Format("2006-01-02"))
	resp, err := weatherClient.Get(full)
	if err != nil {
		log.Printf("Weather fetch failed (continuing without): %v", err)
		return nil
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Weather fetch failed (continuing without): %s", resp.Status)
		return nil
	}
	var payload struct {
		Daily struct {
			Temperature []float64 `json:"temperature_2m_mean"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("Weather decode failed (continuing without): %v", err)
		return nil
	}
	return payload.Daily.Temperature
}

// speciesSlug normalizes a species name into the filename form the data
// server uses ("Wood Thrush" -> "wood_thrush").
func speciesSlug(species string) string {
	return strings.ReplaceAll(strings.ToLower(species), " ", "_")
}

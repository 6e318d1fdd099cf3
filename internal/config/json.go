package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mvolkova/classkeeper/internal/flagx"
	"github.com/mvolkova/classkeeper/internal/timex"
)

// JsonConfig is the DTO used only for JSON unmarshalling. Durations decode
// via timex.Duration so the file can say "15s" or give nanoseconds.
type JsonConfig struct {
	APIBaseURL      string         `json:"api_base_url"`
	APIToken        string         `json:"api_token"`
	DatabasePath    string         `json:"database_path"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	TrendMinSamples int            `json:"trend_min_samples"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flags. Without a flag nothing is loaded. Only fields present
// in the file override existing values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.APIToken != "" {
		cfg.APIToken = jc.APIToken
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.TrendMinSamples != 0 {
		cfg.TrendMinSamples = jc.TrendMinSamples
	}
}

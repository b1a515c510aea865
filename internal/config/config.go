package config

import (
    "time"

    "github.com/spf13/viper"

    "shipquote/internal/courier"
)

// CourierEndpoint configures one courier's serviceability collaborator.
type CourierEndpoint struct {
    URL         string
    NeedsPickup bool
}

type Config struct {
    DatabaseURL           string
    Port                  string
    ZoneDataFile          string
    ServiceabilityTimeout time.Duration
    CourierEndpoints      map[courier.Courier]CourierEndpoint
}

// Load reads configuration from the environment. Only DATABASE_URL has no
// default; everything else falls back to sane values.
func Load() Config {
    v := viper.New()
    v.AutomaticEnv()
    v.SetDefault("PORT", "8080")
    v.SetDefault("SERVICEABILITY_TIMEOUT", "8s")

    // Per-courier serviceability endpoints. A courier without an endpoint
    // has no check configured and is reported not serviceable.
    endpoints := make(map[courier.Courier]CourierEndpoint)
    twoPincode := map[courier.Courier]bool{
        // These partners require the pickup pincode as well.
        courier.Delhivery: true,
        courier.BlueDart:  true,
        courier.DTDC:      true,
    }
    for _, c := range courier.All() {
        key := endpointEnvKey(c)
        if url := v.GetString(key); url != "" {
            endpoints[c] = CourierEndpoint{URL: url, NeedsPickup: twoPincode[c]}
        }
    }

    return Config{
        DatabaseURL:           v.GetString("DATABASE_URL"),
        Port:                  v.GetString("PORT"),
        ZoneDataFile:          v.GetString("ZONE_DATA_FILE"),
        ServiceabilityTimeout: v.GetDuration("SERVICEABILITY_TIMEOUT"),
        CourierEndpoints:      endpoints,
    }
}

// endpointEnvKey maps a courier to its endpoint env var, e.g.
// Ecom Express -> ECOM_EXPRESS_SERVICEABILITY_URL.
func endpointEnvKey(c courier.Courier) string {
    name := ""
    for _, r := range string(c) {
        switch {
        case r >= 'a' && r <= 'z':
            name += string(r - 32)
        case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
            name += string(r)
        case r == ' ':
            name += "_"
        }
    }
    return name + "_SERVICEABILITY_URL"
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default returns the configuration used when nothing is set.
// The default location is the service area's reference station.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "9595",
			SessionName:   "dispatch_session",
			SessionSecret: "change-me-dispatch-session-secret",
			SessionMaxAge: 12 * time.Hour,
			RateLimit: RateLimitConfig{
				Requests: 5,
				Burst:    10,
			},
		},
		Dispatch: DispatchConfig{
			DefaultLocation: LocationConfig{Lat: 12.9716, Lon: 77.5946},
			NearbyRadiusKm:  5,
		},
		Registry: RegistryConfig{
			Source:      "builtin",
			Sheet:       "Technicians",
			SeedIfEmpty: true,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: "dispatch.db",
		},
	}
}

// registerDefaults makes every key known to viper, which AutomaticEnv needs
// before Unmarshal will pick up DISPATCH_* variables.
func registerDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_name", d.Server.SessionName)
	v.SetDefault("server.session_secret", d.Server.SessionSecret)
	v.SetDefault("server.session_max_age", d.Server.SessionMaxAge)
	v.SetDefault("server.rate_limit.requests", d.Server.RateLimit.Requests)
	v.SetDefault("server.rate_limit.burst", d.Server.RateLimit.Burst)

	v.SetDefault("dispatch.default_location.lat", d.Dispatch.DefaultLocation.Lat)
	v.SetDefault("dispatch.default_location.lon", d.Dispatch.DefaultLocation.Lon)
	v.SetDefault("dispatch.nearby_radius_km", d.Dispatch.NearbyRadiusKm)

	v.SetDefault("registry.source", d.Registry.Source)
	v.SetDefault("registry.path", d.Registry.Path)
	v.SetDefault("registry.sheet", d.Registry.Sheet)
	v.SetDefault("registry.seed_if_empty", d.Registry.SeedIfEmpty)

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.path", d.Database.Path)
}

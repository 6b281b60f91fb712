// Package config loads service settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// profile file named .env.{APP_PROFILE} (".env.local" by default). Variables
// that are already set are never overwritten by the file.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	pool, err := db.Connect(ctx, cfg.DB)
//
// Component configs from pkg/ (db.Config, logger.Config, telemetry.Config)
// are embedded as nested structs so their own env tags apply.
//
// # Error Handling
//
// Load and Validate return errors wrapping [ErrInvalidConfig]; every rule
// violation is reported at once through errors.Join.
package config

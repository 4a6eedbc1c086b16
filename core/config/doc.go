// Package config loads env-tagged structs through caarlos0/env.
//
// A .env file in the working directory is read once, on the first call.
// Results are cached per type, so every component can load its own struct
// wherever it is built without re-parsing the environment:
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning the error; use it in main.
package config

// Package config loads environment configuration into structs.
//
// Fields are declared with caarlos0/env tags. Load reads the given dotenv
// files first; files that do not exist are skipped and variables already set
// in the process environment win over file values.
//
//	type Config struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config](".env")
//
// Nested structs are parsed recursively, so package configs such as
// session.Config or redis.Config can be embedded as plain fields.
package config

// Package config loads, normalizes, and validates tabibot configuration.
//
// It supplies defaults, reads TOML files, expands user paths (including tilde
// shortcuts), loads a .env file when present, and honours environment
// fallbacks such as TELEGRAM_BOT_TOKEN. Commands obtain every setting through
// this package so downstream code receives cleaned paths and canonical
// backend names.
package config

// Package config loads application configuration from DUEBILL_*
// environment variables and validates it before startup.
package config

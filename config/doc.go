// Package config loads the service configuration from the environment.
// Values supporting ${VAR} references are expanded strictly: a missing
// variable is an error, not an empty string.
package config

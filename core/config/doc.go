// Package config resolves the effective configuration of a provider call.
//
// Resolution walks an ordered chain of sources and, for each field, keeps the
// first non-empty value: the agent, then the provider defaults held by a
// Store, then the registry baseline (descriptor default model, first
// endpoint, credential from the provider's environment variable).
// Generation parameters merge key by key instead of wholesale.
//
// Load reads the application config file (YAML through viper, overridable
// with POLYPROMPT_* environment variables) and a .env file whose variables
// become the credential baseline.
package config

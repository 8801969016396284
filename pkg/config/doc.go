// Package config defines the runtime configuration for the veritor
// policy engine: policy sources, persistence paths, audit retention,
// metrics, and logging.
//
// Configuration is loaded from a YAML file and can be overridden with
// VERITOR_* environment variables. Defaults cover a local
// single-instance deployment; Validate catches the mistakes that would
// otherwise surface as confusing runtime failures.
package config

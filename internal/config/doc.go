// Package config holds the option bundles for the model, training run,
// dataset and experiment tracking. Each bundle starts from hard-coded
// defaults and applies environment overrides once, at construction.
package config

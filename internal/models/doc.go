// Package models lists the checkpoints a Hugging Face user has published
// and, when an OpenAI-compatible inference server is configured, the
// models that server is currently serving.
package models

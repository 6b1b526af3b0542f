// Package train fine-tunes the translation checkpoint. The Trainer owns the
// configuration, batching and metric computation; the numeric work runs in
// a Backend, by default an external process that reads a manifest and
// collated batches from a run directory and reports progress as JSON lines
// on stdout.
package train

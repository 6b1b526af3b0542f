// Package processor contains the entry-point logic of frwolof. It wires
// the environment, configuration bundles, hub and dataset clients,
// tokenizer, translator and trainer together for the translation demo,
// batch translation, model listing, training and the interactive test and
// quickstart scripts.
package processor

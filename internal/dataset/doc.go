// Package dataset loads the French-Wolof parallel corpus, splits it into
// training and evaluation partitions and tokenizes every record into model
// inputs and labels. Downloaded corpora can be cached in SQLite.
package dataset

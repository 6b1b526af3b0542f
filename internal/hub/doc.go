// Package hub is a small client for the Hugging Face Hub. It downloads
// single repository files, lists an author's models, creates model
// repositories and uploads a local folder as one commit, sending large
// files through the Git LFS batch API.
package hub

package internal

// Version is the release version reported by the CLI.
const Version = "1.0.0"

package cli

// Version is the semantic version of the interpose CLI.
const Version = "0.1.0"

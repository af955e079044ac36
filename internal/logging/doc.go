// Package logging builds the structured slog logger used by authcore.
//
// Callers log outcome kinds only. Cleartext content, salts, keys, tokens and
// credential references never reach a logger.
package logging

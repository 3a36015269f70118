// Package config loads castro's TOML configuration, applies defaults, and
// validates recording, tool, logging and history settings.
//
// Load searches ~/.config/castro/config.toml and then ./castro.toml; a missing
// file yields the defaults. CreateSample writes the embedded sample used by
// `castro config init`.
package config

// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML settings with .env and environment overrides
//   - PromptStore: user-editable prompt templates
package file

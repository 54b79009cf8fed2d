// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: settings in ~/.docsmith/config.toml
//   - PromptStore: user-editable system prompts in ~/.docsmith/prompts
//   - TemplateSource: YAML templates, user directory over built-ins
//
// LoadEnv reads .env files into the process environment.
package file

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and link persistence
//   - TemplateSource: Template schema loading
//   - ConfigStore: Application configuration
//   - IndexQueue: Background index job hand-off
//   - SchedulerStore: Scheduler state persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Text generation. Without it, generation is disabled but
//     validation and document management still work.
//   - SearchIndex: External semantic index. Without it, indexing calls
//     report a disabled status.
//   - PromptStore: Custom system prompts. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

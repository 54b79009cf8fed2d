// Package services implements the driving port interfaces.
// Services hold the document assistant's logic: completeness scoring,
// template loading, prompt construction, response parsing, generation,
// the conversational agent and the indexing pipeline.
//
// Services depend only on the domain and on driven ports; adapters are
// injected by the CLI and MCP entry points.
package services

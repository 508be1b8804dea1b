// Package anisense is a conversational anime recommendation assistant.
//
// It answers free-text requests ("anime like Cowboy Bebop", "short
// romantic comedy with subtitles") by routing them through a supervisor
// agent that delegates to an AniList-backed specialist or a web search
// specialist, then resolves every recommended title against AniList for
// cover art and a short description.
//
// # Quick Start
//
// Install:
//
//	go install github.com/anisense/anisense/cmd/anisense@latest
//
// Set the provider keys and start the server:
//
//	export OPENAI_API_KEY=...
//	export LINKUP_API_KEY=...
//	anisense serve
//
// Then:
//
//	curl -X POST localhost:8080/recommend \
//	  -H 'Content-Type: application/json' \
//	  -d '{"query": "anime like Attack on Titan"}'
//
// Or chat interactively:
//
//	anisense chat
//
// # Architecture
//
//	HTTP front door → conversation session → supervisor agent
//	                                         ├── AniList agent (MCP tools, tag catalog, detail gateway)
//	                                         └── web search agent
//	reply → title enrichment (AniList lookup per **bolded** title)
//
// The AniList tool server is an external MCP subprocess (npx -y
// anilist-mcp) spawned per session and spoken to over standard I/O.
package anisense

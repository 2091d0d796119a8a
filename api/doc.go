// Package api exposes the narrative orchestrator over HTTP. Both
// endpoints return 200 with a populated envelope even when upstream
// sources fail; partial data surfaces as soft errors inside the body,
// never as a transport error.
package api

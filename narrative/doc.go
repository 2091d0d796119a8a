// Package narrative assembles the daily NBA narrative envelope.
//
// The orchestrator fans out to the configured data feeds, runs either
// the AI generator or the grounded template builder, and wraps the
// result in a stable response contract. Upstream failures degrade to
// soft errors in response metadata; the envelope itself always reports
// ok=true and carries a usable summary, falling back to a canonical
// route-owned summary when generation fails outright.
package narrative

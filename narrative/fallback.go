package narrative

// FallbackModel marks summaries produced by the route-owned fallback.
const FallbackModel = "ROUTE_FALLBACK"

// FallbackSummary builds the canonical degraded summary. It depends on
// nothing but its reason string, so it stays available when both the
// AI generator and the template builder are broken.
func FallbackSummary(reason string) *Summary {
	return &Summary{
		MacroSummary: []string{
			"NBA narrative is available in fallback mode.",
			"Detailed AI narrative is currently unavailable for this request.",
		},
		MicroSummary: MicroSummary{
			KeyEdges:      []KeyEdge{},
			RiskScore:     0.0,
			RiskRationale: reason,
		},
		AnalystTakeaway:   "Review the slate and odds context; retry AI mode once configuration stabilizes.",
		ConfidenceSummary: []string{"Low"},
		Metadata: SummaryMetadata{
			Model: FallbackModel,
		},
	}
}

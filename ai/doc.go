// Package ai generates narrative summaries through the OpenAI chat
// completions API. The prompt is schedule-grounded: the model is given
// the fetched slate, coverage counts, and raw inputs, and is instructed
// to never invent stats, injuries, or lines.
package ai

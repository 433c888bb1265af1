// Package viz renders campaign progress and reports in the terminal.
//
//   - [ProgressModel]: Bubble Tea view of a running campaign
//   - [Feed]: campaign observer forwarding worker events to the view
//   - [RenderReport], [RenderSummary]: lipgloss tables for finished campaigns
//
// # Key Bindings
//
//	q / Ctrl+C - Stop the campaign after in-flight simulations finish
package viz

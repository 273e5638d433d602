// Package summary parses the free text returned by the completion provider
// into ordered, titled sections, and groups action-item lines by assignee.
//
// Header detection is an explicit ordered list of pattern rules evaluated
// first-match-wins. It is a heuristic, not a grammar: it trades occasional
// false positives on short capitalized lines for robustness against the
// model's inconsistent markdown formatting.
package summary

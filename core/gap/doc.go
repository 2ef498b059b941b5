// Package gap computes per-route capacity gaps and reallocation suggestions.
//
// Analyze is a pure batch transform: every derived field of a route depends
// only on that route's inputs and the shared seating capacity. Summarize and
// PlanReallocation work on the analyzed routes to give a fleet-wide view.
package gap

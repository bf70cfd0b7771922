// Package store holds the view-model side of the issue list: location
// resolution, upvote decoration and list ordering. Everything here is pure
// so the controllers stay thin over MongoDB.
package store

import (
	"sort"

	"aquawatch-be/geo"
	"aquawatch-be/models"
)

// IssueView is a WaterIssue prepared for clients: location resolved to a
// validated latitude-first pair and the caller's upvote state merged in.
// HasUpvoted is derived per request and never persisted.
type IssueView struct {
	models.WaterIssue
	Coordinates [2]float64 `json:"coordinates"`
	HasUpvoted  bool       `json:"hasUpvoted"`
}

// ResolveLocation turns the raw stored location into a usable pair. Any
// parse or validation failure substitutes fallback so one malformed row
// degrades to "marker at center" instead of aborting the list.
func ResolveLocation(raw interface{}, fallback [2]float64) [2]float64 {
	if pair, ok := geo.ParsePoint(raw); ok {
		return pair
	}
	return fallback
}

// Decorate builds IssueViews from stored issues. upvoted holds the issue
// ids (hex) the requesting user has upvoted; it may be nil for anonymous
// requests.
func Decorate(issues []models.WaterIssue, upvoted map[string]bool, center [2]float64) []IssueView {
	views := make([]IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, IssueView{
			WaterIssue:  issue,
			Coordinates: ResolveLocation(issue.Location, center),
			HasUpvoted:  upvoted[issue.ID.Hex()],
		})
	}
	return views
}

// SortForList orders urgent issues first, newest first within each group.
func SortForList(views []IssueView) {
	sort.SliceStable(views, func(i, j int) bool {
		iu := views[i].Status == models.StatusUrgent
		ju := views[j].Status == models.StatusUrgent
		if iu != ju {
			return iu
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

// UpvotedSet converts upvote rows into the lookup Decorate expects.
func UpvotedSet(upvotes []models.Upvote) map[string]bool {
	set := make(map[string]bool, len(upvotes))
	for _, u := range upvotes {
		set[u.IssueID.Hex()] = true
	}
	return set
}

package chat

import "fmt"

// QuickAction is a pre-canned prompt shown as a shortcut button.
type QuickAction struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Query    string `json:"query"`
	Category string `json:"category"` // general, report or emergency
}

// maxQuickActions caps the shortcut row.
const maxQuickActions = 4

// DefaultQuickActions are shown to users without prior reports.
var DefaultQuickActions = []QuickAction{
	{
		ID:       "report-issue",
		Label:    "Report Water Issue",
		Query:    "I want to report a water issue in my area",
		Category: "report",
	},
	{
		ID:       "water-quality",
		Label:    "Check Water Quality",
		Query:    "What's the water quality in my area?",
		Category: "general",
	},
	{
		ID:       "emergency",
		Label:    "Report Emergency",
		Query:    "There's a water emergency that needs immediate attention",
		Category: "emergency",
	},
	{
		ID:       "conservation",
		Label:    "Water Conservation Tips",
		Query:    "How can I conserve water?",
		Category: "general",
	},
}

// PersonalizeQuickActions prepends shortcuts referencing the user's recent
// issue types, keeping the total at maxQuickActions. Duplicate types are
// collapsed; with no recent types the defaults come back unchanged.
func PersonalizeQuickActions(recentIssueTypes []string) []QuickAction {
	seen := make(map[string]bool, len(recentIssueTypes))
	var custom []QuickAction
	for _, issueType := range recentIssueTypes {
		if issueType == "" || seen[issueType] {
			continue
		}
		seen[issueType] = true
		custom = append(custom, QuickAction{
			ID:       fmt.Sprintf("recent-%d", len(custom)),
			Label:    fmt.Sprintf("Check %s Status", issueType),
			Query:    fmt.Sprintf("What's the status of my %s report?", issueType),
			Category: "report",
		})
	}

	actions := append(custom, DefaultQuickActions...)
	if len(actions) > maxQuickActions {
		actions = actions[:maxQuickActions]
	}
	return actions
}

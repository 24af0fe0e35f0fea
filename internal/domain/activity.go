package domain

import (
	"strings"
	"time"
)

// Activity types recorded from assistant replies.
const (
	ActivityCreate = "CREATE"
	ActivityModify = "MODIFY"
	ActivityRemove = "REMOVE"
)

const (
	MaxActivityEntries = 10
	activityDetailsMax = 50
)

// Activity is one entry of a user's assistant activity log.
type Activity struct {
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// ClassifyReply derives an activity entry from an assistant reply by
// keyword. ok is false when the reply does not describe a change.
func ClassifyReply(reply string, at time.Time) (Activity, bool) {
	lower := strings.ToLower(reply)

	var kind string
	switch {
	case strings.Contains(lower, "added"), strings.Contains(lower, "created"):
		kind = ActivityCreate
	case strings.Contains(lower, "updated"), strings.Contains(lower, "changed"), strings.Contains(lower, "marked"):
		kind = ActivityModify
	case strings.Contains(lower, "deleted"), strings.Contains(lower, "removed"):
		kind = ActivityRemove
	default:
		return Activity{}, false
	}

	return Activity{Type: kind, Details: truncateDetails(reply), Timestamp: at}, true
}

func truncateDetails(s string) string {
	r := []rune(s)
	if len(r) <= activityDetailsMax {
		return s
	}
	return string(r[:activityDetailsMax-3]) + "..."
}

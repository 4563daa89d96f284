package beeper

import "time"

// Message is a single result from the search-messages endpoint.
type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatID"`
	Title      string    `json:"title"`
	Network    string    `json:"network"`
	Timestamp  time.Time `json:"timestamp"`
	IsUnread   bool      `json:"isUnread"`
	IsArchived bool      `json:"isArchived"`
	IsMuted    bool      `json:"isMuted"`
}

type searchResponse struct {
	Items []Message `json:"items"`
}

// CountOptions control which unread messages count toward an alert.
type CountOptions struct {
	// MaxAgeDays drops messages older than this many days.
	// Zero or negative disables the cutoff.
	MaxAgeDays      int
	ExcludeArchived bool
	ExcludeMuted    bool
}

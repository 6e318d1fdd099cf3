package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a conversation thread. Draft messages exist only
// on this device until sent.
type Message struct {
	ID     uuid.UUID `json:"id"`
	Sender string    `json:"sender"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
	Draft  bool      `json:"draft"`
}

// Conversation is a message thread with a teacher or counselor.
type Conversation struct {
	ID       uuid.UUID `json:"id"`
	Subject  string    `json:"subject"`
	With     string    `json:"with"`
	Messages []Message `json:"messages"`
}

// MergeMessages unions the messages of both versions of a conversation by
// message ID, preferring the local copy of any message present on both
// sides so unsent drafts survive. The result is ordered by SentAt.
func (c Conversation) MergeMessages(server Conversation) Conversation {
	merged := c
	seen := make(map[uuid.UUID]struct{}, len(c.Messages))
	for _, m := range c.Messages {
		seen[m.ID] = struct{}{}
	}
	out := append([]Message(nil), c.Messages...)
	for _, m := range server.Messages {
		if _, ok := seen[m.ID]; !ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	merged.Messages = out
	return merged
}

// HasDrafts reports whether any message in the thread is an unsent draft.
func (c Conversation) HasDrafts() bool {
	for _, m := range c.Messages {
		if m.Draft {
			return true
		}
	}
	return false
}

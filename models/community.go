package models

// CommunityMessageType categorizes a community board post
type CommunityMessageType string

const (
	MessageTypeSuggestion CommunityMessageType = "suggestion"
	MessageTypeFeedback   CommunityMessageType = "feedback"
	MessageTypeGeneral    CommunityMessageType = "general"
)

// CommunityMessage is one anonymous post on the community board. The board is
// the only durably persisted data in the system, stored newest-first as a
// single JSON-encoded list under a fixed key.
type CommunityMessage struct {
	ID        string               `json:"id"`
	Codename  string               `json:"codename"`
	Text      string               `json:"text"`
	Timestamp string               `json:"timestamp"`
	Type      CommunityMessageType `json:"type"`
}

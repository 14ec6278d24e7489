package models

// Role identifies the speaker of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps an incoming role string onto the closed enum.
// Unknown values are rejected so open strings never reach storage.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), true
	}
	return "", false
}

// Turn is one finalized utterance in a transcript. Immutable once finalized.
type Turn struct {
	Role      Role   `json:"role" bson:"role"`
	Content   string `json:"content" bson:"content"`
	Timestamp string `json:"timestamp" bson:"timestamp"` // ISO-8601
}

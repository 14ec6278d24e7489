package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interview types
const (
	InterviewTypeTechnical  = "Technical"
	InterviewTypeBehavioral = "Behavioral"
	InterviewTypeMixed      = "Mixed"
)

// Experience levels
const (
	LevelJunior = "Junior"
	LevelMid    = "Mid-Level"
	LevelSenior = "Senior"
)

var validInterviewTypes = map[string]bool{
	InterviewTypeTechnical:  true,
	InterviewTypeBehavioral: true,
	InterviewTypeMixed:      true,
}

var validLevels = map[string]bool{
	LevelJunior: true,
	LevelMid:    true,
	LevelSenior: true,
}

func IsValidInterviewType(t string) bool { return validInterviewTypes[t] }
func IsValidLevel(l string) bool         { return validLevels[l] }

// Interview is a behavioral/mixed mock interview owned by a user.
// Finalized stays false until question generation completes; consumers must
// never surface an un-finalized interview as available.
type Interview struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Role      string             `json:"role" bson:"role"`
	Level     string             `json:"level" bson:"level"`
	Type      string             `json:"type" bson:"type"`
	Techstack []string           `json:"techstack" bson:"techstack"`
	Questions []string           `json:"questions" bson:"questions"`
	UserID    string             `json:"userId" bson:"userId"`
	Finalized bool               `json:"finalized" bson:"finalized"`
	CreatedAt string             `json:"createdAt" bson:"createdAt"`
}

// Question is one coding problem statement.
type Question struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Constraints string `json:"constraints,omitempty" bson:"constraints,omitempty"`
	Example     string `json:"example,omitempty" bson:"example,omitempty"`
}

// CodingInterview is a coding mock interview session. Code accumulates while
// the session runs; transcript and completedAt are set once on completion.
type CodingInterview struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Company     string             `json:"company" bson:"company"`
	UserID      string             `json:"userId" bson:"userId"`
	Question    Question           `json:"question" bson:"question"`
	Transcript  []Turn             `json:"transcript" bson:"transcript"`
	Code        string             `json:"code" bson:"code"`
	CreatedAt   string             `json:"createdAt" bson:"createdAt"`
	CompletedAt string             `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

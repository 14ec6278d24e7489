package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryScore is one scored evaluation category.
type CategoryScore struct {
	Name    string  `json:"name" bson:"name"`
	Score   float64 `json:"score" bson:"score"`
	Comment string  `json:"comment" bson:"comment"`
}

// Feedback is the structured evaluation of a behavioral interview.
// At most one record exists per (interviewId, userId); writes go through the
// repository upsert, never a blind insert.
type Feedback struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	InterviewID         string             `json:"interviewId" bson:"interviewId"`
	UserID              string             `json:"userId" bson:"userId"`
	TotalScore          float64            `json:"totalScore" bson:"totalScore"`
	CategoryScores      []CategoryScore    `json:"categoryScores" bson:"categoryScores"`
	Strengths           []string           `json:"strengths" bson:"strengths"`
	AreasForImprovement []string           `json:"areasForImprovement" bson:"areasForImprovement"`
	FinalAssessment     string             `json:"finalAssessment" bson:"finalAssessment"`
	CreatedAt           string             `json:"createdAt" bson:"createdAt"`
}

// CodingFeedback is the evaluation of a coding interview. Stored in its own
// collection, same upsert key as behavioral feedback.
type CodingFeedback struct {
	Feedback   `bson:",inline"`
	CodeReview string `json:"codeReview" bson:"codeReview"`
}

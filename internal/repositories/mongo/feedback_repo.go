package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

// FeedbackRepo wraps the behavioral feedback collection.
type FeedbackRepo struct{ col *mongo.Collection }

func NewFeedbackRepo(c *Client) (*FeedbackRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("feedback")

	// Index on the upsert key. Not unique: the query-then-write upsert keeps
	// the original last-write-wins contract and a prior race may have left
	// duplicates that GetByKey resolves deterministically.
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "interviewId", Value: 1}, {Key: "userId", Value: 1}},
	})

	return &FeedbackRepo{col: col}, nil
}

func feedbackKey(interviewID, userID string) bson.M {
	return bson.M{"interviewId": interviewID, "userId": userID}
}

// Upsert updates the existing record for (interviewId, userId) or inserts a
// new one, preserving the persisted identifier on update.
func (r *FeedbackRepo) Upsert(ctx context.Context, feedback *models.Feedback) (string, bool, error) {
	filter := feedbackKey(feedback.InterviewID, feedback.UserID)

	var existing models.Feedback
	err := r.col.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&existing)
	switch {
	case err == nil:
		fields := bson.M{
			"totalScore":          feedback.TotalScore,
			"categoryScores":      feedback.CategoryScores,
			"strengths":           feedback.Strengths,
			"areasForImprovement": feedback.AreasForImprovement,
			"finalAssessment":     feedback.FinalAssessment,
			"createdAt":           feedback.CreatedAt,
		}
		if _, err := r.col.UpdateByID(ctx, existing.ID, bson.M{"$set": fields}); err != nil {
			return "", false, err
		}
		return existing.ID.Hex(), true, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		feedback.ID = primitive.NewObjectID()
		if _, err := r.col.InsertOne(ctx, feedback); err != nil {
			return "", false, err
		}
		return feedback.ID.Hex(), false, nil

	default:
		return "", false, err
	}
}

// GetByKey returns the single record for the key. If a prior race left more
// than one, the one with the smallest identifier wins.
func (r *FeedbackRepo) GetByKey(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.col.FindOne(ctx, feedbackKey(interviewID, userID),
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&feedback)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepo) ExistsForInterview(ctx context.Context, interviewID string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"interviewId": interviewID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CodingFeedbackRepo wraps the coding feedback collection. Same upsert key,
// separate collection from behavioral feedback.
type CodingFeedbackRepo struct{ col *mongo.Collection }

func NewCodingFeedbackRepo(c *Client) (*CodingFeedbackRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("coding-feedback")

	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "interviewId", Value: 1}, {Key: "userId", Value: 1}},
	})

	return &CodingFeedbackRepo{col: col}, nil
}

func (r *CodingFeedbackRepo) Upsert(ctx context.Context, feedback *models.CodingFeedback) (string, bool, error) {
	filter := feedbackKey(feedback.InterviewID, feedback.UserID)

	var existing models.CodingFeedback
	err := r.col.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&existing)
	switch {
	case err == nil:
		fields := bson.M{
			"totalScore":          feedback.TotalScore,
			"categoryScores":      feedback.CategoryScores,
			"strengths":           feedback.Strengths,
			"areasForImprovement": feedback.AreasForImprovement,
			"finalAssessment":     feedback.FinalAssessment,
			"codeReview":          feedback.CodeReview,
			"createdAt":           feedback.CreatedAt,
		}
		if _, err := r.col.UpdateByID(ctx, existing.ID, bson.M{"$set": fields}); err != nil {
			return "", false, err
		}
		return existing.ID.Hex(), true, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		feedback.ID = primitive.NewObjectID()
		if _, err := r.col.InsertOne(ctx, feedback); err != nil {
			return "", false, err
		}
		return feedback.ID.Hex(), false, nil

	default:
		return "", false, err
	}
}

func (r *CodingFeedbackRepo) GetByKey(ctx context.Context, interviewID, userID string) (*models.CodingFeedback, error) {
	var feedback models.CodingFeedback
	err := r.col.FindOne(ctx, feedbackKey(interviewID, userID),
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&feedback)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

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

// InterviewRepo wraps the behavioral interviews collection.
type InterviewRepo struct{ col *mongo.Collection }

func NewInterviewRepo(c *Client) (*InterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("interviews")

	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})

	return &InterviewRepo{col: col}, nil
}

func (r *InterviewRepo) Create(ctx context.Context, interview *models.Interview) (string, error) {
	interview.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, interview); err != nil {
		return "", err
	}
	return interview.ID.Hex(), nil
}

// Finalize stores generated questions and marks the interview displayable.
func (r *InterviewRepo) Finalize(ctx context.Context, id string, questions []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	result, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"questions": questions,
		"finalized": true,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	var interview models.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&interview); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &interview, nil
}

func (r *InterviewRepo) ListFinalizedByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID, "finalized": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Interview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

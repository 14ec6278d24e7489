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

// CodingInterviewRepo wraps the coding interviews collection.
type CodingInterviewRepo struct{ col *mongo.Collection }

func NewCodingInterviewRepo(c *Client) (*CodingInterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("coding-interviews")

	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})

	return &CodingInterviewRepo{col: col}, nil
}

func (r *CodingInterviewRepo) Create(ctx context.Context, interview *models.CodingInterview) (string, error) {
	interview.ID = primitive.NewObjectID()
	if interview.Transcript == nil {
		interview.Transcript = []models.Turn{}
	}
	if _, err := r.col.InsertOne(ctx, interview); err != nil {
		return "", err
	}
	return interview.ID.Hex(), nil
}

func (r *CodingInterviewRepo) GetByID(ctx context.Context, id string) (*models.CodingInterview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	var interview models.CodingInterview
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&interview); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &interview, nil
}

// SaveCode updates only the code field of a running session.
func (r *CodingInterviewRepo) SaveCode(ctx context.Context, id, code string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	result, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"code": code}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Complete freezes the session. This write is independent of feedback
// generation: a later feedback failure never rolls it back.
func (r *CodingInterviewRepo) Complete(ctx context.Context, id string, transcript []models.Turn, code, completedAt string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	result, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"transcript":  transcript,
		"code":        code,
		"completedAt": completedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *CodingInterviewRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.CodingInterview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CodingInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CodingInterviewRepo) ListCompleted(ctx context.Context) ([]models.CodingInterview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"completedAt": bson.M{"$exists": true, "$ne": ""}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CodingInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

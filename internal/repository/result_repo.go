package repository

import (
	"context"

	"impostorhunt/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ResultRepo is the append-only staging sink for finished-game records
// consumed by the external analytics pipeline.
type ResultRepo interface {
	Insert(ctx context.Context, result *model.GameResult) error
}

type resultRepo struct {
	collection *mongo.Collection
}

func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("game_results"),
	}
}

func (r *resultRepo) Insert(ctx context.Context, result *model.GameResult) error {
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

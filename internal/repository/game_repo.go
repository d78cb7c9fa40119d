package repository

import (
	"context"
	"errors"

	"impostorhunt/internal/logging"
	"impostorhunt/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned by Txn when the game document is missing.
	ErrNotFound = errors.New("game not found")

	// ErrTxnConflict is returned when a transaction body lost the
	// compare-and-swap against concurrent writers on every retry.
	ErrTxnConflict = errors.New("game transaction conflict: retries exhausted")
)

// txnMaxRetries bounds compare-and-swap retries before reporting conflict.
const txnMaxRetries = 8

// TxnFn mutates the game snapshot it receives. The body may be executed
// several times against fresh snapshots when concurrent writers win the
// swap, so it must be a pure function of the snapshot: recompute every
// decision, perform no external effects.
type TxnFn func(g *model.Game) error

// GameRepo handles MongoDB operations for game documents
type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	Get(ctx context.Context, id string) (*model.Game, error)
	ListPublicWaiting(ctx context.Context) ([]*model.Game, error)

	// Txn runs fn against the current game snapshot and commits the
	// mutated snapshot iff no concurrent writer committed in between.
	// Mutations against one document serialize in commit order. Returns
	// the committed game.
	Txn(ctx context.Context, id string, fn TxnFn) (*model.Game, error)
}

type gameRepo struct {
	collection *mongo.Collection
}

// NewGameRepo creates a new game repository with indexes
func NewGameRepo(db *mongo.Database) GameRepo {
	repo := &gameRepo{
		collection: db.Collection("game_rooms"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *gameRepo) ensureIndexes(ctx context.Context) {
	logger := logging.FromContext(ctx)

	// Abandoned pre-start lobbies expire via the ttl field; finished
	// games have the field cleared and persist indefinitely.
	ttl := options.Index().SetExpireAfterSeconds(0)
	if _, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ttl", Value: 1}},
		Options: ttl,
	}); err != nil {
		logger.Warnf("create ttl index on game_rooms: %v", err)
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "privacy", Value: 1},
			{Key: "status", Value: 1},
		},
	}); err != nil {
		logger.Warnf("create lobby index on game_rooms: %v", err)
	}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	_, err := r.collection.InsertOne(ctx, game)
	return err
}

func (r *gameRepo) Get(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) ListPublicWaiting(ctx context.Context) ([]*model.Game, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"privacy": model.PrivacyPublic,
		"status":  model.GameWaiting,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*model.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepo) Txn(ctx context.Context, id string, fn TxnFn) (*model.Game, error) {
	for attempt := 0; attempt < txnMaxRetries; attempt++ {
		var game model.Game
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		snapshotVersion := game.Version
		if err := fn(&game); err != nil {
			return nil, err
		}
		game.Version = snapshotVersion + 1

		// The version filter makes this a compare-and-swap: a writer
		// that committed since our read bumped the version, so the
		// replace matches nothing and we retry on a fresh snapshot.
		res, err := r.collection.ReplaceOne(ctx, bson.M{
			"_id":     id,
			"version": snapshotVersion,
		}, &game)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return &game, nil
		}
	}
	return nil, ErrTxnConflict
}

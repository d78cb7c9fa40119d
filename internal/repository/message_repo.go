package repository

import (
	"context"
	"errors"

	"impostorhunt/internal/logging"
	"impostorhunt/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateAnswer is returned when a player already staged an answer
// for the round.
var ErrDuplicateAnswer = errors.New("answer already submitted for this round")

// MessageRepo handles the staged-answer and revealed-message collections.
type MessageRepo interface {
	// StageAnswer inserts one pending answer; ErrDuplicateAnswer if the
	// (game, author, round) slot is taken.
	StageAnswer(ctx context.Context, answer *model.PendingAnswer) error

	// StageAnswers batch-inserts the AI players' generated answers.
	StageAnswers(ctx context.Context, answers []*model.PendingAnswer) error

	// HasAnswer reports whether author already staged an answer for round.
	HasAnswer(ctx context.Context, gameID, authorID string, round int) (bool, error)

	// RevealPending moves every staged answer for the game into the
	// permanent message log (copy + delete).
	RevealPending(ctx context.Context, gameID string) error

	// PendingBefore and MessagesBefore return answers from rounds earlier
	// than round, for prompt history extraction.
	PendingBefore(ctx context.Context, gameID string, round int) ([]*model.PendingAnswer, error)
	MessagesBefore(ctx context.Context, gameID string, round int) ([]*model.Message, error)

	// Messages returns the full revealed log for a game.
	Messages(ctx context.Context, gameID string) ([]*model.Message, error)
}

type messageRepo struct {
	pending  *mongo.Collection
	messages *mongo.Collection
}

// NewMessageRepo creates a new message repository with indexes
func NewMessageRepo(db *mongo.Database) MessageRepo {
	repo := &messageRepo{
		pending:  db.Collection("pending_answers"),
		messages: db.Collection("messages"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *messageRepo) ensureIndexes(ctx context.Context) {
	logger := logging.FromContext(ctx)

	// The unique index is what enforces at-most-one answer per player per
	// round, even under racing submissions.
	unique := options.Index().SetUnique(true)
	if _, err := r.pending.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "gameId", Value: 1},
			{Key: "authorId", Value: 1},
			{Key: "roundNumber", Value: 1},
		},
		Options: unique,
	}); err != nil {
		logger.Warnf("create unique index on pending_answers: %v", err)
	}

	if _, err := r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "gameId", Value: 1},
			{Key: "roundNumber", Value: 1},
		},
	}); err != nil {
		logger.Warnf("create round index on messages: %v", err)
	}
}

func (r *messageRepo) StageAnswer(ctx context.Context, answer *model.PendingAnswer) error {
	_, err := r.pending.InsertOne(ctx, answer)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAnswer
	}
	return err
}

func (r *messageRepo) StageAnswers(ctx context.Context, answers []*model.PendingAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	docs := make([]interface{}, len(answers))
	for i, a := range answers {
		docs[i] = a
	}
	// Unordered so one duplicate does not block the rest of the batch.
	opts := options.InsertMany().SetOrdered(false)
	_, err := r.pending.InsertMany(ctx, docs, opts)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *messageRepo) HasAnswer(ctx context.Context, gameID, authorID string, round int) (bool, error) {
	err := r.pending.FindOne(ctx, bson.M{
		"gameId":      gameID,
		"authorId":    authorID,
		"roundNumber": round,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// pendingDoc carries the Mongo object id so moved documents can be
// deleted precisely, leaving answers staged mid-move untouched.
type pendingDoc struct {
	ID                  primitive.ObjectID `bson:"_id"`
	model.PendingAnswer `bson:",inline"`
}

// messageDoc pins a revealed message to its staged document id. A racing
// or retried reveal that read the same staged set collides on _id instead
// of writing the log twice.
type messageDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	model.Message `bson:",inline"`
}

func revealDocs(staged []pendingDoc) ([]interface{}, []primitive.ObjectID) {
	docs := make([]interface{}, len(staged))
	ids := make([]primitive.ObjectID, len(staged))
	for i, p := range staged {
		docs[i] = &messageDoc{
			ID: p.ID,
			Message: model.Message{
				GameID:      p.GameID,
				SenderID:    p.AuthorID,
				SenderName:  p.SenderName,
				Text:        p.Text,
				RoundNumber: p.RoundNumber,
				Timestamp:   p.SubmittedAt,
			},
		}
		ids[i] = p.ID
	}
	return docs, ids
}

func (r *messageRepo) RevealPending(ctx context.Context, gameID string) error {
	cursor, err := r.pending.Find(ctx, bson.M{"gameId": gameID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var staged []pendingDoc
	if err := cursor.All(ctx, &staged); err != nil {
		return err
	}
	if len(staged) == 0 {
		return nil
	}

	docs, ids := revealDocs(staged)

	// Unordered, so documents another caller already moved error out
	// individually while the rest still land.
	opts := options.InsertMany().SetOrdered(false)
	if _, err := r.messages.InsertMany(ctx, docs, opts); err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	_, err = r.pending.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *messageRepo) PendingBefore(ctx context.Context, gameID string, round int) ([]*model.PendingAnswer, error) {
	cursor, err := r.pending.Find(ctx, bson.M{
		"gameId":      gameID,
		"roundNumber": bson.M{"$lt": round},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.PendingAnswer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *messageRepo) MessagesBefore(ctx context.Context, gameID string, round int) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "roundNumber", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{
		"gameId":      gameID,
		"roundNumber": bson.M{"$lt": round},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) Messages(ctx context.Context, gameID string) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "roundNumber", Value: 1},
		{Key: "timestamp", Value: 1},
	})
	cursor, err := r.messages.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"impostorhunt/internal/model"
)

type memResultRepo struct {
	mu      sync.Mutex
	results []*model.GameResult
	err     error
}

func (r *memResultRepo) Insert(ctx context.Context, result *model.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.results = append(r.results, result)
	return nil
}

func finishedGameFixture() *model.Game {
	return &model.Game{
		ID:           "g1",
		Status:       model.GameFinished,
		RoundPhase:   model.PhaseGameEnded,
		Language:     "en",
		AIModelID:    "gpt-5",
		AICount:      1,
		CurrentRound: 2,
		Winner:       model.WinnerHumans,
		Players: []model.Player{
			{UID: "h1", DisplayName: "Witty Walrus"},
			{UID: "h2", DisplayName: "Clever Cat"},
			{UID: "a1", DisplayName: "Sneaky Fox", IsImpostor: true, IsEliminated: true},
		},
		Rounds: []model.Round{
			{Round: 1, Question: "What is your favorite weekend activity?"},
			{Round: 2, Question: "Describe your ideal vacation destination."},
		},
		Votes: []model.Vote{
			{VoterID: "h1", TargetID: "a1", Round: 2},
			{VoterID: "h2", TargetID: "a1", Round: 2},
		},
		LastRoundResult: &model.RoundResult{
			Round:                2,
			EliminatedPlayerID:   "a1",
			EliminatedPlayerName: "Sneaky Fox",
			EliminatedRole:       "AI",
			EndCondition:         model.EndAllImpostorsEliminated,
			VoteCounts:           map[string]int{"a1": 2},
		},
	}
}

func TestArchiveBuildsResultRecord(t *testing.T) {
	messages := &memMessageRepo{}
	results := &memResultRepo{}
	endedAt := time.Date(2026, 8, 23, 13, 0, 0, 0, time.UTC)

	svc := NewArchiveService(messages, results)
	svc.clock = func() time.Time { return endedAt }

	game := finishedGameFixture()
	for _, m := range []*model.Message{
		{GameID: "g1", SenderID: "h1", SenderName: "Witty Walrus", Text: "Hiking.", RoundNumber: 1},
		{GameID: "g1", SenderID: "a1", SenderName: "Sneaky Fox", Text: "Gaming.", RoundNumber: 1},
		{GameID: "g1", SenderID: "h1", SenderName: "Witty Walrus", Text: "Iceland.", RoundNumber: 2},
	} {
		messages.messages = append(messages.messages, m)
	}

	svc.Archive(context.Background(), game)

	if len(results.results) != 1 {
		t.Fatalf("stored results = %d", len(results.results))
	}
	got := results.results[0]

	if got.GameID != "g1" || got.Winner != model.WinnerHumans || got.TotalRounds != 2 {
		t.Fatalf("record header = %+v", got)
	}
	if !got.EndedAt.Equal(endedAt) {
		t.Fatalf("endedAt = %v", got.EndedAt)
	}
	if got.AIModelUsed != "gpt-5" || got.Language != "en" {
		t.Fatalf("record settings = %+v", got)
	}
	if len(got.Players) != 3 {
		t.Fatalf("players = %d", len(got.Players))
	}

	if len(got.Rounds) != 2 {
		t.Fatalf("rounds = %d", len(got.Rounds))
	}
	if len(got.Rounds[0].RevealedAnswers) != 2 || len(got.Rounds[1].RevealedAnswers) != 1 {
		t.Fatalf("answers per round = %d, %d", len(got.Rounds[0].RevealedAnswers), len(got.Rounds[1].RevealedAnswers))
	}
	for _, a := range got.Rounds[0].RevealedAnswers {
		if a.PlayerID == "a1" && !a.IsAI {
			t.Fatal("impostor answer not flagged as AI")
		}
		if a.PlayerID == "h1" && a.IsAI {
			t.Fatal("human answer flagged as AI")
		}
	}

	if len(got.Votes) != 2 {
		t.Fatalf("votes = %d", len(got.Votes))
	}
	for _, v := range got.Votes {
		if !v.Timestamp.Equal(endedAt) {
			t.Fatalf("vote timestamp = %v, want backfilled end time", v.Timestamp)
		}
	}

	// The analytics record identifies the eliminated player by id, not by
	// the per-game display name.
	if got.LastRoundResult.EliminatedPlayer != "a1" || got.LastRoundResult.EndCondition != model.EndAllImpostorsEliminated {
		t.Fatalf("last round = %+v", got.LastRoundResult)
	}
}

func TestArchiveDefaultsEndCondition(t *testing.T) {
	results := &memResultRepo{}
	svc := NewArchiveService(&memMessageRepo{}, results)

	game := finishedGameFixture()
	game.LastRoundResult = nil

	svc.Archive(context.Background(), game)

	if len(results.results) != 1 {
		t.Fatalf("stored results = %d", len(results.results))
	}
	if got := results.results[0].LastRoundResult.EndCondition; got != model.EndMaxRoundsReached {
		t.Fatalf("end condition = %q", got)
	}
}

func TestArchiveSwallowsStoreErrors(t *testing.T) {
	results := &memResultRepo{err: errors.New("insert failed")}
	svc := NewArchiveService(&memMessageRepo{}, results)

	// Must not panic or surface the error.
	svc.Archive(context.Background(), finishedGameFixture())

	if len(results.results) != 0 {
		t.Fatalf("stored results = %d", len(results.results))
	}
}

package service

import (
	"context"
	"time"

	"impostorhunt/internal/logging"
	"impostorhunt/internal/model"
	"impostorhunt/internal/repository"
)

// ArchiveService writes a finished game's full record to the results
// collection for the analytics pipeline. Archival is best effort: every
// failure is logged and swallowed, the game itself is already final.
type ArchiveService struct {
	messages repository.MessageRepo
	results  repository.ResultRepo
	clock    func() time.Time
}

// NewArchiveService creates a new archive service
func NewArchiveService(messages repository.MessageRepo, results repository.ResultRepo) *ArchiveService {
	return &ArchiveService{
		messages: messages,
		results:  results,
		clock:    time.Now,
	}
}

// Archive assembles and stores the result record for a finished game.
func (s *ArchiveService) Archive(ctx context.Context, game *model.Game) {
	logger := logging.FromContext(ctx)

	messages, err := s.messages.Messages(ctx, game.ID)
	if err != nil {
		logger.Errorw("archive: loading revealed messages failed", "game", game.ID, "error", err)
		messages = nil
	}

	result := s.buildResult(game, messages)
	if err := s.results.Insert(ctx, result); err != nil {
		logger.Errorw("archive: storing game result failed", "game", game.ID, "error", err)
		return
	}
	logger.Infow("archived game result", "game", game.ID, "winner", game.Winner)
}

func (s *ArchiveService) buildResult(game *model.Game, messages []*model.Message) *model.GameResult {
	endedAt := s.clock()

	players := make([]model.ResultPlayer, 0, len(game.Players))
	impostors := make(map[string]bool, len(game.Players))
	for _, p := range game.Players {
		impostors[p.UID] = p.IsImpostor
		players = append(players, model.ResultPlayer{
			UID:          p.UID,
			DisplayName:  p.DisplayName,
			IsImpostor:   p.IsImpostor,
			IsEliminated: p.IsEliminated,
		})
	}

	answersByRound := make(map[int][]model.ResultAnswer)
	for _, m := range messages {
		answersByRound[m.RoundNumber] = append(answersByRound[m.RoundNumber], model.ResultAnswer{
			PlayerID:   m.SenderID,
			PlayerName: m.SenderName,
			Text:       m.Text,
			IsAI:       impostors[m.SenderID],
		})
	}

	rounds := make([]model.ResultRound, 0, len(game.Rounds))
	for _, r := range game.Rounds {
		rounds = append(rounds, model.ResultRound{
			RoundNumber:     r.Round,
			Question:        r.Question,
			RevealedAnswers: answersByRound[r.Round],
		})
	}

	// Votes carry no cast time in the game document; the archival record
	// backfills the game's end time so downstream ordering stays stable.
	votes := make([]model.ResultVote, 0, len(game.Votes))
	for _, v := range game.Votes {
		votes = append(votes, model.ResultVote{
			RoundNumber: v.Round,
			VoterID:     v.VoterID,
			TargetID:    v.TargetID,
			Timestamp:   endedAt,
		})
	}

	lastRound := model.ResultLastRound{EndCondition: model.EndMaxRoundsReached}
	if lr := game.LastRoundResult; lr != nil {
		lastRound = model.ResultLastRound{
			EliminatedPlayer: lr.EliminatedPlayerID,
			EliminatedRole:   lr.EliminatedRole,
			EndCondition:     lr.EndCondition,
			VoteCounts:       lr.VoteCounts,
		}
		if lastRound.EndCondition == "" {
			lastRound.EndCondition = model.EndMaxRoundsReached
		}
	}

	return &model.GameResult{
		GameID:          game.ID,
		EndedAt:         endedAt,
		Language:        game.Language,
		AIModelUsed:     game.AIModelID,
		Winner:          game.Winner,
		TotalRounds:     game.CurrentRound,
		Players:         players,
		Rounds:          rounds,
		Votes:           votes,
		LastRoundResult: lastRound,
	}
}

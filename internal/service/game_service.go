package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"impostorhunt/internal/cache"
	"impostorhunt/internal/config"
	"impostorhunt/internal/logging"
	"impostorhunt/internal/model"
	"impostorhunt/internal/random"
	"impostorhunt/internal/repository"
	"impostorhunt/internal/resource"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxRounds bounds a game; surviving impostors win after the last round.
const maxRounds = 3

// generateTimeout bounds the detached AI generation work for one round.
const generateTimeout = 60 * time.Second

// Generator produces an AI player's answer text for a round. It is slow
// and network-bound, so it is never called inside a store transaction.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries the context an AI answer is generated from.
type GenerateRequest struct {
	GameID      string
	ModelID     string
	Language    string
	Question    string
	RoundNumber int
	History     []model.RoundHistory
}

// Archiver receives finished games for best-effort analytics hand-off.
// Implementations log and swallow their own failures.
type Archiver interface {
	Archive(ctx context.Context, game *model.Game)
}

// GameService owns the game lifecycle: creation, join, start, answer and
// vote collection, and phase advancement. All state changes go through
// the game repository's versioned transactions; no in-process locks.
type GameService struct {
	games     repository.GameRepo
	messages  repository.MessageRepo
	lobby     cache.LobbyCache
	histories *cache.HistoryCache
	generator Generator
	archiver  Archiver
	rand      random.Source

	clock func() time.Time
	idGen func() string

	answerWindow time.Duration
	waitingTTL   time.Duration
	startedTTL   time.Duration
}

// NewGameService creates a new game service
func NewGameService(
	games repository.GameRepo,
	messages repository.MessageRepo,
	lobby cache.LobbyCache,
	histories *cache.HistoryCache,
	generator Generator,
	archiver Archiver,
	src random.Source,
	cfg *config.Config,
) *GameService {
	return &GameService{
		games:        games,
		messages:     messages,
		lobby:        lobby,
		histories:    histories,
		generator:    generator,
		archiver:     archiver,
		rand:         src,
		clock:        time.Now,
		idGen:        func() string { return uuid.New().String() },
		answerWindow: cfg.AnswerWindow,
		waitingTTL:   cfg.WaitingTTL,
		startedTTL:   cfg.StartedTTL,
	}
}

// Create makes a new game room in the waiting state with the host as its
// first (human) player.
func (s *GameService) Create(ctx context.Context, hostID string, settings model.GameSettings) (*model.Game, error) {
	if !resource.SupportedLanguage(settings.Language) {
		return nil, invalidState("Language %q is not supported.", settings.Language)
	}
	if settings.Privacy != model.PrivacyPublic && settings.Privacy != model.PrivacyPrivate {
		return nil, invalidState("Privacy must be public or private.")
	}
	if settings.AICount < 1 || settings.AICount > 2 {
		return nil, invalidState("AI player count must be 1 or 2.")
	}
	if !model.SupportedModel(settings.AIModelID) {
		return nil, invalidState("Requested AI model is not supported.")
	}

	now := s.clock()
	ttl := now.Add(s.waitingTTL)
	game := &model.Game{
		ID:           s.idGen(),
		HostID:       hostID,
		Status:       model.GameWaiting,
		RoundPhase:   model.PhaseNone,
		Language:     settings.Language,
		Privacy:      settings.Privacy,
		AIModelID:    settings.AIModelID,
		AICount:      settings.AICount,
		CurrentRound: 0,
		Players: []model.Player{
			{UID: hostID, IsImpostor: false},
		},
		Rounds:    []model.Round{},
		Votes:     []model.Vote{},
		CreatedAt: now,
		TTL:       &ttl,
	}

	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	s.invalidateLobby(ctx)
	return game, nil
}

// Join appends a player to a waiting game. Display names are assigned at
// start, not here.
func (s *GameService) Join(ctx context.Context, gameID, playerID string) error {
	_, err := s.txn(ctx, gameID, func(g *model.Game) error {
		if g.Status != model.GameWaiting {
			return invalidState("This game is not waiting for players.")
		}
		if len(g.Players) >= model.MaxPlayers {
			return invalidState("This game is full.")
		}
		if g.Player(playerID) != nil {
			return invalidState("You have already joined this game.")
		}
		g.Players = append(g.Players, model.Player{UID: playerID, IsImpostor: false})
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateLobby(ctx)
	return nil
}

// Start finalizes the roster and begins round 1. Host only, once.
func (s *GameService) Start(ctx context.Context, gameID, callerID string) error {
	now := s.clock()
	game, err := s.txn(ctx, gameID, func(g *model.Game) error {
		if g.HostID != callerID {
			return invalidState("Only the host can start the game.")
		}
		if g.Status != model.GameWaiting {
			return invalidState("The game has already started or is finished.")
		}

		for i := range g.Players {
			g.Players[i].IsImpostor = false
		}
		for i := 0; i < g.AICount; i++ {
			g.Players = append(g.Players, model.Player{
				UID:        "ai_" + s.idGen(),
				IsImpostor: true,
			})
		}

		names, err := resource.Nicknames(s.rand, len(g.Players))
		if err != nil {
			return err
		}
		for i := range g.Players {
			g.Players[i].DisplayName = names[i]
		}
		random.Shuffle(s.rand, len(g.Players), func(i, j int) {
			g.Players[i], g.Players[j] = g.Players[j], g.Players[i]
		})

		s.beginRound(g, 1, now)
		g.Status = model.GameInProgress
		ttl := now.Add(s.startedTTL)
		g.TTL = &ttl
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateLobby(ctx)
	s.scheduleGeneration(ctx, game, 1)
	return nil
}

// SubmitAnswer stages a player's answer for the current round. Staged
// answers stay hidden until the round is tallied.
func (s *GameService) SubmitAnswer(ctx context.Context, gameID, playerID, text string) error {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return invalidState("Game not found.")
	}
	if game.Status != model.GameInProgress {
		return invalidState("This game is not currently in progress.")
	}
	if game.RoundPhase != model.PhaseAnswerSubmission {
		return invalidState("It is not currently time to submit answers.")
	}
	player := game.Player(playerID)
	if player == nil {
		return invalidState("You are not a player in this game.")
	}
	already, err := s.messages.HasAnswer(ctx, gameID, playerID, game.CurrentRound)
	if err != nil {
		return err
	}
	if already {
		return invalidState("You have already submitted an answer for this round.")
	}

	// Two racing submissions can both pass the check above; the unique
	// index rejects the loser.
	err = s.messages.StageAnswer(ctx, &model.PendingAnswer{
		GameID:      gameID,
		AuthorID:    playerID,
		SenderName:  player.DisplayName,
		Text:        text,
		RoundNumber: game.CurrentRound,
		SubmittedAt: s.clock(),
	})
	if errors.Is(err, repository.ErrDuplicateAnswer) {
		return invalidState("You have already submitted an answer for this round.")
	}
	return err
}

// TallyAnswers closes the answer phase once its timer has elapsed: staged
// answers are revealed into the message log and the game advances to
// round 2 (after round 1) or to voting. Calling it again after the phase
// moved on is a no-op, so racing and retried callers are safe.
func (s *GameService) TallyAnswers(ctx context.Context, gameID string) error {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return invalidState("Game not found.")
	}
	if game.Status != model.GameInProgress {
		return invalidState("This game is not currently in progress.")
	}
	if game.RoundPhase != model.PhaseAnswerSubmission {
		return nil
	}
	now := s.clock()
	if game.RoundEndTime != nil && now.Before(*game.RoundEndTime) {
		return invalidState("Answer submission time has not ended yet.")
	}

	// Revealing is idempotent: a racing caller that loses the phase
	// advance below simply finds nothing left to move.
	if err := s.messages.RevealPending(ctx, gameID); err != nil {
		return err
	}

	nextRound := 0
	committed, err := s.txn(ctx, gameID, func(g *model.Game) error {
		nextRound = 0
		if g.Status != model.GameInProgress {
			return invalidState("This game is not currently in progress.")
		}
		if g.RoundPhase != model.PhaseAnswerSubmission {
			return errNoop
		}
		if g.CurrentRound == 1 {
			nextRound = 2
			s.beginRound(g, 2, now)
		} else {
			g.RoundPhase = model.PhaseVoting
			g.RoundStartTime = &now
			g.RoundEndTime = nil
		}
		return nil
	})
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return err
	}

	if nextRound > 0 {
		s.scheduleGeneration(ctx, committed, nextRound)
	}
	return nil
}

// SubmitVote records a vote for the current round. The whole operation is
// one transaction against the game document; only the commit that brings
// the round's vote count up to the required total triggers the tally.
// Serialized commits make the trigger fire at most once regardless of how
// concurrent submissions interleave.
func (s *GameService) SubmitVote(ctx context.Context, gameID, voterID, targetID string) error {
	logger := logging.FromContext(ctx)

	trigger := false
	_, err := s.txn(ctx, gameID, func(g *model.Game) error {
		// Recomputed from the fresh snapshot on every retry.
		trigger = false

		if g.Status != model.GameInProgress {
			return invalidState("This game is not currently in progress.")
		}
		if g.RoundPhase != model.PhaseVoting {
			return invalidState("It is not currently time to vote.")
		}
		if voterID == targetID {
			return invalidState("You cannot vote for yourself.")
		}
		if g.Player(voterID) == nil {
			return invalidState("You are not a player in this game.")
		}
		if g.Player(targetID) == nil {
			return invalidState("The targeted player is not in this game.")
		}
		if g.HasVoted(voterID, g.CurrentRound) {
			return invalidState("You have already voted in this round.")
		}

		g.Votes = append(g.Votes, model.Vote{
			VoterID:  voterID,
			TargetID: targetID,
			Round:    g.CurrentRound,
		})

		required := g.RequiredVotes()
		cast := len(g.VotesForRound(g.CurrentRound))
		trigger = required > 0 && cast >= required
		return nil
	})
	if err != nil {
		return err
	}

	if trigger {
		logger.Infow("all votes received, triggering tally", "game", gameID)
		return s.TallyVotes(ctx, gameID)
	}
	return nil
}

// TallyVotes counts the round's votes, applies the elimination rule, and
// either ends the game or begins the next round. No-op when the voting
// phase already advanced.
func (s *GameService) TallyVotes(ctx context.Context, gameID string) error {
	now := s.clock()

	var decision tallyDecision
	nextRound := 0
	committed, err := s.txn(ctx, gameID, func(g *model.Game) error {
		decision = tallyDecision{}
		nextRound = 0

		if g.Status != model.GameInProgress {
			return invalidState("This game is not currently in progress.")
		}
		if g.RoundPhase != model.PhaseVoting {
			return errNoop
		}

		decision = decideRound(g)
		result := decision.Result
		g.LastRoundResult = &result

		if decision.GameOver {
			g.Status = model.GameFinished
			g.RoundPhase = model.PhaseGameEnded
			g.Winner = decision.Winner
			g.TTL = nil // finished games never expire
			return nil
		}

		nextRound = g.CurrentRound + 1
		s.beginRound(g, nextRound, now)
		return nil
	})
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return err
	}

	if decision.GameOver {
		s.scheduleArchive(ctx, committed)
		return nil
	}
	s.scheduleGeneration(ctx, committed, nextRound)
	return nil
}

// Game returns a game by id, nil when missing.
func (s *GameService) Game(ctx context.Context, gameID string) (*model.Game, error) {
	return s.games.Get(ctx, gameID)
}

// ListPublicGames returns public games waiting for players, served from
// the lobby cache between rebuilds.
func (s *GameService) ListPublicGames(ctx context.Context) ([]model.PublicGame, error) {
	logger := logging.FromContext(ctx)

	if listing, ok, err := s.lobby.GetListing(ctx); err != nil {
		logger.Warnw("lobby cache read failed", "error", err)
	} else if ok {
		return listing, nil
	}

	games, err := s.games.ListPublicWaiting(ctx)
	if err != nil {
		return nil, err
	}

	listing := make([]model.PublicGame, 0, len(games))
	for _, g := range games {
		listing = append(listing, model.PublicGame{
			GameID:      g.ID,
			Language:    g.Language,
			PlayerCount: len(g.Players),
			MaxPlayers:  model.MaxPlayers,
			AIModelID:   g.AIModelID,
		})
	}

	if err := s.lobby.SetListing(ctx, listing); err != nil {
		logger.Warnw("lobby cache write failed", "error", err)
	}
	return listing, nil
}

// beginRound moves g into the answer phase of round n with a fresh
// question and timer window.
func (s *GameService) beginRound(g *model.Game, n int, now time.Time) {
	end := now.Add(s.answerWindow)
	g.RoundPhase = model.PhaseAnswerSubmission
	g.CurrentRound = n
	g.RoundStartTime = &now
	g.RoundEndTime = &end
	g.Rounds = append(g.Rounds, model.Round{
		Round:    n,
		Question: resource.Question(s.rand, g.Language),
	})
}

// txn wraps the repository transaction and maps store errors onto the
// service taxonomy.
func (s *GameService) txn(ctx context.Context, gameID string, fn repository.TxnFn) (*model.Game, error) {
	game, err := s.games.Txn(ctx, gameID, fn)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalidState("Game not found.")
	}
	if errors.Is(err, repository.ErrTxnConflict) {
		return nil, ErrConflict
	}
	return game, err
}

func (s *GameService) invalidateLobby(ctx context.Context) {
	if err := s.lobby.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warnw("lobby cache invalidation failed", "error", err)
	}
}

// scheduleGeneration kicks off AI answer generation for round n of the
// committed game state, detached from the request.
func (s *GameService) scheduleGeneration(ctx context.Context, game *model.Game, n int) {
	if len(game.ActiveImpostors()) == 0 {
		return
	}
	logger := logging.FromContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("recovered panic in AI generation", "game", game.ID, "round", n, "panic", r)
			}
		}()
		genCtx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), logger), generateTimeout)
		defer cancel()
		s.generateAIAnswers(genCtx, game, n)
	}()
}

// generateAIAnswers produces one staged answer per AI player for round n.
// Players generate concurrently; a failure in one degrades that player to
// the placeholder text and never blocks the others.
func (s *GameService) generateAIAnswers(ctx context.Context, game *model.Game, n int) {
	logger := logging.FromContext(ctx)

	if n-1 >= len(game.Rounds) {
		logger.Errorw("round not found in game data", "game", game.ID, "round", n)
		return
	}
	question := game.Rounds[n-1].Question

	history, err := s.roundHistories(ctx, game, n)
	if err != nil {
		logger.Warnw("round history extraction failed", "game", game.ID, "round", n, "error", err)
	}

	now := s.clock()
	var mu sync.Mutex
	var staged []*model.PendingAnswer

	eg, egCtx := errgroup.WithContext(ctx)
	for _, ai := range game.ActiveImpostors() {
		ai := ai
		eg.Go(func() error {
			text, err := s.generator.Generate(egCtx, GenerateRequest{
				GameID:      game.ID,
				ModelID:     game.AIModelID,
				Language:    game.Language,
				Question:    question,
				RoundNumber: n,
				History:     history,
			})
			if err != nil {
				logger.Errorw("AI generation failed, using placeholder",
					"game", game.ID, "round", n, "player", ai.DisplayName, "error", err)
				text = resource.PlaceholderAnswer(n)
			}
			mu.Lock()
			staged = append(staged, &model.PendingAnswer{
				GameID:      game.ID,
				AuthorID:    ai.UID,
				SenderName:  ai.DisplayName,
				Text:        text,
				RoundNumber: n,
				SubmittedAt: now,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	if err := s.messages.StageAnswers(ctx, staged); err != nil {
		logger.Errorw("staging AI answers failed", "game", game.ID, "round", n, "error", err)
		return
	}
	logger.Infow("enqueued AI answers", "game", game.ID, "round", n, "count", len(staged))
}

// roundHistories builds the public answer history of completed rounds,
// combining still-staged and revealed answers, for prompt context.
func (s *GameService) roundHistories(ctx context.Context, game *model.Game, round int) ([]model.RoundHistory, error) {
	if round <= 1 {
		return nil, nil
	}
	if history, ok := s.histories.Get(game.ID, round); ok {
		return history, nil
	}
	logger := logging.FromContext(ctx)

	type entry struct {
		senderID   string
		senderName string
		text       string
		round      int
		at         time.Time
	}

	var entries []entry
	pending, err := s.messages.PendingBefore(ctx, game.ID, round)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		entries = append(entries, entry{p.AuthorID, p.SenderName, p.Text, p.RoundNumber, p.SubmittedAt})
	}
	revealed, err := s.messages.MessagesBefore(ctx, game.ID, round)
	if err != nil {
		return nil, err
	}
	for _, m := range revealed {
		entries = append(entries, entry{m.SenderID, m.SenderName, m.Text, m.RoundNumber, m.Timestamp})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].round != entries[j].round {
			return entries[i].round < entries[j].round
		}
		return entries[i].at.Before(entries[j].at)
	})

	byRound := make(map[int]*model.RoundHistory)
	for _, e := range entries {
		h, ok := byRound[e.round]
		if !ok {
			question := ""
			if e.round-1 >= 0 && e.round-1 < len(game.Rounds) {
				question = game.Rounds[e.round-1].Question
			}
			h = &model.RoundHistory{Round: e.round, Question: question}
			byRound[e.round] = h
		}

		role := "human"
		name := e.senderName
		if p := game.Player(e.senderID); p != nil {
			if p.IsImpostor {
				role = "ai"
			}
			name = p.DisplayName
		}
		if name == "" {
			name = "Unknown"
		}
		h.Answers = append(h.Answers, model.HistoryAnswer{Player: name, Role: role, Text: e.text})
	}

	history := make([]model.RoundHistory, 0, len(byRound))
	for r := 1; r < round; r++ {
		if h, ok := byRound[r]; ok {
			history = append(history, *h)
		} else {
			logger.Warnw("missing messages for round when building history",
				"game", game.ID, "round", r)
		}
	}

	s.histories.Add(game.ID, round, history)
	return history, nil
}

// scheduleArchive hands the finished game to the archiver off the
// critical path. Archival failures never reach the caller.
func (s *GameService) scheduleArchive(ctx context.Context, game *model.Game) {
	logger := logging.FromContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("recovered panic in archival", "game", game.ID, "panic", r)
			}
		}()
		archiveCtx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), logger), generateTimeout)
		defer cancel()
		s.archiver.Archive(archiveCtx, game)
	}()
}

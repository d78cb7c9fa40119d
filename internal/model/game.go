package model

import "time"

type GameStatus string

const (
	GameWaiting    GameStatus = "waiting"
	GameInProgress GameStatus = "in_progress"
	GameFinished   GameStatus = "finished"
)

type RoundPhase string

const (
	PhaseNone             RoundPhase = "NONE"
	PhaseAnswerSubmission RoundPhase = "ANSWER_SUBMISSION"
	PhaseVoting           RoundPhase = "VOTING"
	PhaseGameEnded        RoundPhase = "GAME_ENDED"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

type Winner string

const (
	WinnerHumans Winner = "humans"
	WinnerAI     Winner = "ai"
)

// End conditions recorded in RoundResult when a game terminates.
const (
	EndAllImpostorsEliminated = "all_impostors_eliminated"
	EndMaxRoundsReached       = "max_rounds_reached"
)

const MaxPlayers = 4

type Player struct {
	UID          string `json:"uid" bson:"uid"`
	DisplayName  string `json:"gameDisplayName,omitempty" bson:"gameDisplayName,omitempty"`
	IsImpostor   bool   `json:"isImpostor" bson:"isImpostor"`
	IsEliminated bool   `json:"isEliminated" bson:"isEliminated"`
}

type Round struct {
	Round    int    `json:"round" bson:"round"`
	Question string `json:"question" bson:"question"`
}

type Vote struct {
	VoterID  string `json:"voterId" bson:"voterId"`
	TargetID string `json:"targetId" bson:"targetId"`
	Round    int    `json:"round" bson:"round"`
}

// VoteSummary is one target's tally in a round result. IsImpostor is nil
// when the target could not be resolved against the roster.
type VoteSummary struct {
	TargetID   string `json:"targetId" bson:"targetId"`
	TargetName string `json:"targetName" bson:"targetName"`
	VoteCount  int    `json:"voteCount" bson:"voteCount"`
	IsImpostor *bool  `json:"isImpostor" bson:"isImpostor"`
}

// RoundResult summarizes the most recently tallied round.
type RoundResult struct {
	Round                int            `json:"round" bson:"round"`
	TotalVotes           int            `json:"totalVotes" bson:"totalVotes"`
	Votes                []VoteSummary  `json:"votes" bson:"votes"`
	VoteCounts           map[string]int `json:"voteCounts" bson:"voteCounts"`
	EliminatedPlayerID   string         `json:"eliminatedPlayerId,omitempty" bson:"eliminatedPlayerId,omitempty"`
	EliminatedPlayerName string         `json:"eliminatedPlayerName,omitempty" bson:"eliminatedPlayerName,omitempty"`
	EliminatedRole       string         `json:"eliminatedRole,omitempty" bson:"eliminatedRole,omitempty"`
	Summary              string         `json:"summary" bson:"summary"`
	GameEnded            bool           `json:"gameEnded" bson:"gameEnded"`
	EndCondition         string         `json:"endCondition,omitempty" bson:"endCondition,omitempty"`
	EndReasonMessage     string         `json:"endReasonMessage,omitempty" bson:"endReasonMessage,omitempty"`
}

// GameSettings is the host-supplied configuration at create time.
type GameSettings struct {
	Language  string  `json:"language" bson:"language"`
	AICount   int     `json:"aiCount" bson:"aiCount"`
	Privacy   Privacy `json:"privacy" bson:"privacy"`
	AIModelID string  `json:"aiModelId" bson:"aiModelId"`
}

// Game is the aggregate root, one document per game. All mutation after
// create goes through the repository's versioned transaction; Version is
// the optimistic-concurrency token and is never exposed to clients.
type Game struct {
	ID              string       `json:"gameId" bson:"_id"`
	Version         int64        `json:"-" bson:"version"`
	HostID          string       `json:"hostId" bson:"hostId"`
	Status          GameStatus   `json:"status" bson:"status"`
	RoundPhase      RoundPhase   `json:"roundPhase" bson:"roundPhase"`
	Language        string       `json:"language" bson:"language"`
	Privacy         Privacy      `json:"privacy" bson:"privacy"`
	AIModelID       string       `json:"aiModelId" bson:"aiModelId"`
	AICount         int          `json:"aiCount" bson:"aiCount"`
	CurrentRound    int          `json:"currentRound" bson:"currentRound"`
	RoundStartTime  *time.Time   `json:"roundStartTime,omitempty" bson:"roundStartTime,omitempty"`
	RoundEndTime    *time.Time   `json:"roundEndTime,omitempty" bson:"roundEndTime,omitempty"`
	Players         []Player     `json:"players" bson:"players"`
	Rounds          []Round      `json:"rounds" bson:"rounds"`
	Votes           []Vote       `json:"votes" bson:"votes"`
	LastRoundResult *RoundResult `json:"lastRoundResult,omitempty" bson:"lastRoundResult,omitempty"`
	Winner          Winner       `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
	TTL             *time.Time   `json:"-" bson:"ttl,omitempty"`
}

// Player returns the roster entry for uid, or nil.
func (g *Game) Player(uid string) *Player {
	for i := range g.Players {
		if g.Players[i].UID == uid {
			return &g.Players[i]
		}
	}
	return nil
}

// VotesForRound returns the votes cast in the given round.
func (g *Game) VotesForRound(round int) []Vote {
	var votes []Vote
	for _, v := range g.Votes {
		if v.Round == round {
			votes = append(votes, v)
		}
	}
	return votes
}

// HasVoted reports whether uid already voted in the given round.
func (g *Game) HasVoted(uid string, round int) bool {
	for _, v := range g.Votes {
		if v.VoterID == uid && v.Round == round {
			return true
		}
	}
	return false
}

// RequiredVotes is the number of votes that closes the current voting
// phase: one per active (non-eliminated) non-impostor player.
func (g *Game) RequiredVotes() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsEliminated && !p.IsImpostor {
			n++
		}
	}
	return n
}

// ActiveImpostors returns the AI-controlled roster entries still in the
// game. Eliminated impostors no longer answer.
func (g *Game) ActiveImpostors() []Player {
	var ai []Player
	for _, p := range g.Players {
		if p.IsImpostor && !p.IsEliminated {
			ai = append(ai, p)
		}
	}
	return ai
}

// Clone deep-copies the aggregate so snapshots handed to transaction
// bodies can be mutated freely.
func (g *Game) Clone() *Game {
	c := *g
	c.Players = append([]Player(nil), g.Players...)
	c.Rounds = append([]Round(nil), g.Rounds...)
	c.Votes = append([]Vote(nil), g.Votes...)
	if g.RoundStartTime != nil {
		t := *g.RoundStartTime
		c.RoundStartTime = &t
	}
	if g.RoundEndTime != nil {
		t := *g.RoundEndTime
		c.RoundEndTime = &t
	}
	if g.TTL != nil {
		t := *g.TTL
		c.TTL = &t
	}
	if g.LastRoundResult != nil {
		r := *g.LastRoundResult
		r.Votes = append([]VoteSummary(nil), g.LastRoundResult.Votes...)
		if g.LastRoundResult.VoteCounts != nil {
			r.VoteCounts = make(map[string]int, len(g.LastRoundResult.VoteCounts))
			for k, v := range g.LastRoundResult.VoteCounts {
				r.VoteCounts[k] = v
			}
		}
		c.LastRoundResult = &r
	}
	return &c
}

// PublicGame is the lobby listing entry for a public, waiting game.
type PublicGame struct {
	GameID      string `json:"gameId"`
	Language    string `json:"language"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	AIModelID   string `json:"aiModelId"`
}

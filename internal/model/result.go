package model

import "time"

// GameResult is the append-only archival record produced once per finished
// game for the external analytics pipeline.
type GameResult struct {
	GameID          string          `json:"gameId" bson:"gameId"`
	EndedAt         time.Time       `json:"endedAt" bson:"endedAt"`
	Language        string          `json:"language" bson:"language"`
	AIModelUsed     string          `json:"aiModelUsed" bson:"aiModelUsed"`
	Winner          Winner          `json:"winner" bson:"winner"`
	TotalRounds     int             `json:"totalRounds" bson:"totalRounds"`
	Players         []ResultPlayer  `json:"players" bson:"players"`
	Rounds          []ResultRound   `json:"rounds" bson:"rounds"`
	Votes           []ResultVote    `json:"votes" bson:"votes"`
	LastRoundResult ResultLastRound `json:"lastRoundResult" bson:"lastRoundResult"`
}

type ResultPlayer struct {
	UID          string `json:"uid" bson:"uid"`
	DisplayName  string `json:"gameDisplayName" bson:"gameDisplayName"`
	IsImpostor   bool   `json:"isImpostor" bson:"isImpostor"`
	IsEliminated bool   `json:"isEliminated" bson:"isEliminated"`
}

type ResultRound struct {
	RoundNumber     int            `json:"roundNumber" bson:"roundNumber"`
	Question        string         `json:"question" bson:"question"`
	RevealedAnswers []ResultAnswer `json:"revealedAnswers" bson:"revealedAnswers"`
}

type ResultAnswer struct {
	PlayerID   string `json:"playerId" bson:"playerId"`
	PlayerName string `json:"playerName" bson:"playerName"`
	Text       string `json:"text" bson:"text"`
	IsAI       bool   `json:"isAI" bson:"isAI"`
}

type ResultVote struct {
	RoundNumber int       `json:"roundNumber" bson:"roundNumber"`
	VoterID     string    `json:"voterId" bson:"voterId"`
	TargetID    string    `json:"targetId" bson:"targetId"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// ResultLastRound carries the terminal round summary. UI-facing reason
// text is deliberately excluded; consumers derive it from EndCondition.
type ResultLastRound struct {
	EliminatedPlayer string         `json:"eliminatedPlayer,omitempty" bson:"eliminatedPlayer,omitempty"`
	EliminatedRole   string         `json:"eliminatedRole,omitempty" bson:"eliminatedRole,omitempty"`
	EndCondition     string         `json:"endCondition" bson:"endCondition"`
	VoteCounts       map[string]int `json:"voteCounts" bson:"voteCounts"`
}

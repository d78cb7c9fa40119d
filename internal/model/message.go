package model

import "time"

// PendingAnswer is a staged, unrevealed answer for the current round. It
// lives in its own collection, keyed by (game, author, round), and is moved
// into Messages when the round's answer phase is tallied.
type PendingAnswer struct {
	GameID      string    `json:"gameId" bson:"gameId"`
	AuthorID    string    `json:"authorId" bson:"authorId"`
	SenderName  string    `json:"senderName" bson:"senderName"`
	Text        string    `json:"text" bson:"text"`
	RoundNumber int       `json:"roundNumber" bson:"roundNumber"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// Message is a revealed answer in the permanent log.
type Message struct {
	GameID      string    `json:"gameId" bson:"gameId"`
	SenderID    string    `json:"senderId" bson:"senderId"`
	SenderName  string    `json:"senderName" bson:"senderName"`
	Text        string    `json:"text" bson:"text"`
	RoundNumber int       `json:"roundNumber" bson:"roundNumber"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// RoundHistory is one completed round's public answers, used as prompt
// context for AI generation.
type RoundHistory struct {
	Round    int             `json:"round"`
	Question string          `json:"question"`
	Answers  []HistoryAnswer `json:"answers"`
}

type HistoryAnswer struct {
	Player string `json:"player"`
	Role   string `json:"role"` // "human" or "ai"
	Text   string `json:"text"`
}

package repository

import (
	"testing"
	"time"

	"impostorhunt/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRevealDocsKeepStagedIDs(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	staged := []pendingDoc{
		{
			ID: primitive.NewObjectID(),
			PendingAnswer: model.PendingAnswer{
				GameID:      "g1",
				AuthorID:    "h1",
				SenderName:  "Witty Walrus",
				Text:        "Hiking.",
				RoundNumber: 1,
				SubmittedAt: now,
			},
		},
		{
			ID: primitive.NewObjectID(),
			PendingAnswer: model.PendingAnswer{
				GameID:      "g1",
				AuthorID:    "a1",
				SenderName:  "Sneaky Fox",
				Text:        "Gaming.",
				RoundNumber: 1,
				SubmittedAt: now.Add(time.Second),
			},
		},
	}

	docs, ids := revealDocs(staged)
	if len(docs) != 2 || len(ids) != 2 {
		t.Fatalf("docs = %d ids = %d", len(docs), len(ids))
	}

	for i, p := range staged {
		// The message keeps the staged document id, so re-revealing the
		// same staged set collides on _id instead of duplicating the log.
		doc, ok := docs[i].(*messageDoc)
		if !ok {
			t.Fatalf("docs[%d] is %T", i, docs[i])
		}
		if doc.ID != p.ID || ids[i] != p.ID {
			t.Fatalf("doc %d id = %s ids = %s, want %s", i, doc.ID, ids[i], p.ID)
		}
		if doc.SenderID != p.AuthorID || doc.SenderName != p.SenderName {
			t.Fatalf("doc %d sender = %s/%s", i, doc.SenderID, doc.SenderName)
		}
		if doc.Text != p.Text || doc.RoundNumber != p.RoundNumber {
			t.Fatalf("doc %d content = %q round %d", i, doc.Text, doc.RoundNumber)
		}
		if !doc.Timestamp.Equal(p.SubmittedAt) {
			t.Fatalf("doc %d timestamp = %v", i, doc.Timestamp)
		}
	}
}

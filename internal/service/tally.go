package service

import (
	"fmt"
	"sort"

	"impostorhunt/internal/model"
)

// tallyDecision is the outcome of counting one round's votes.
type tallyDecision struct {
	Result   model.RoundResult
	GameOver bool
	Winner   model.Winner
}

// decideRound counts the current round's votes, applies the elimination
// rule to g's roster, and evaluates the win conditions. It touches nothing
// outside g, so it is safe inside a re-executable transaction body.
//
// Elimination rule: the sole top target is eliminated iff its count
// strictly exceeds the runner-up's (or it is the only target). A tie for
// first, or zero votes, eliminates no one.
func decideRound(g *model.Game) tallyDecision {
	round := g.CurrentRound
	votes := g.VotesForRound(round)

	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.TargetID]++
	}

	var eliminated *model.Player
	eliminatedRole := ""
	if uid, ok := pickEliminated(counts); ok {
		if p := g.Player(uid); p != nil {
			p.IsEliminated = true
			eliminated = p
			eliminatedRole = "Human"
			if p.IsImpostor {
				eliminatedRole = "AI"
			}
		}
	}

	activeImpostors := 0
	for _, p := range g.Players {
		if !p.IsEliminated && p.IsImpostor {
			activeImpostors++
		}
	}

	var summary string
	switch {
	case len(votes) == 0:
		summary = "No votes were cast this round."
	case eliminated != nil:
		summary = fmt.Sprintf("%s was eliminated (%s).", eliminated.DisplayName, eliminatedRole)
	default:
		summary = "Votes tied. No one was eliminated."
	}

	result := model.RoundResult{
		Round:      round,
		TotalVotes: len(votes),
		Votes:      voteSummaries(g, counts),
		VoteCounts: counts,
		Summary:    summary,
	}
	if eliminated != nil {
		result.EliminatedPlayerID = eliminated.UID
		result.EliminatedPlayerName = eliminated.DisplayName
		result.EliminatedRole = eliminatedRole
	}

	decision := tallyDecision{Result: result}

	// Win evaluation order matters: eliminating the last impostor on the
	// final round is still a human win.
	switch {
	case activeImpostors == 0:
		decision.GameOver = true
		decision.Winner = model.WinnerHumans
		decision.Result.GameEnded = true
		decision.Result.EndCondition = model.EndAllImpostorsEliminated
		decision.Result.EndReasonMessage = "All impostors have been eliminated. Humans win!"
	case round >= maxRounds:
		decision.GameOver = true
		decision.Winner = model.WinnerAI
		decision.Result.GameEnded = true
		decision.Result.EndCondition = model.EndMaxRoundsReached
		decision.Result.EndReasonMessage = "Maximum rounds reached with surviving impostors. AI win."
	}

	return decision
}

// pickEliminated returns the target to eliminate, if any.
func pickEliminated(counts map[string]int) (string, bool) {
	if len(counts) == 0 {
		return "", false
	}

	topUID := ""
	top, second := 0, 0
	for uid, n := range counts {
		switch {
		case n > top:
			second = top
			top = n
			topUID = uid
		case n > second:
			second = n
		}
	}
	if len(counts) == 1 || top > second {
		return topUID, true
	}
	return "", false
}

// voteSummaries renders per-target tallies, most-voted first.
func voteSummaries(g *model.Game, counts map[string]int) []model.VoteSummary {
	summaries := make([]model.VoteSummary, 0, len(counts))
	for uid, n := range counts {
		s := model.VoteSummary{
			TargetID:   uid,
			TargetName: "Unknown",
			VoteCount:  n,
		}
		if p := g.Player(uid); p != nil {
			s.TargetName = p.DisplayName
			impostor := p.IsImpostor
			s.IsImpostor = &impostor
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].VoteCount != summaries[j].VoteCount {
			return summaries[i].VoteCount > summaries[j].VoteCount
		}
		return summaries[i].TargetID < summaries[j].TargetID
	})
	return summaries
}

package magi

import (
	"github.com/yourusername/boat-oracle/internal/models"
)

// Tally reduces agent results to a majority vote. Only successful results
// with a pick vote. Ties go to the pick seen first in result order, and the
// agreement rate is taken over voting results, not over dispatched agents.
func Tally(results []models.AgentResult) models.ConsensusOutcome {
	out := models.ConsensusOutcome{Votes: make(map[string]int)}

	var order []string
	voters := 0
	for _, r := range results {
		if !r.IsSuccess() {
			continue
		}
		out.SuccessCount++
		if !r.HasPick() {
			continue
		}
		voters++
		if _, seen := out.Votes[*r.Pick]; !seen {
			order = append(order, *r.Pick)
		}
		out.Votes[*r.Pick]++
	}

	if voters == 0 {
		return out
	}

	winner, best := "", 0
	for _, pick := range order {
		if out.Votes[pick] > best {
			winner, best = pick, out.Votes[pick]
		}
	}
	out.Consensus = &winner
	out.AgreementRate = float64(best) / float64(voters)
	return out
}

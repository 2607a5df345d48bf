// Package coalition turns a partition's per-seller quality scores into a
// rank-ordered equilibrium problem and maps the answer back to sellers.
package coalition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/bertrand/internal/domain/model"
)

// TieEpsilon is the shift applied to tied scores before ranking.
const TieEpsilon = 0.0005

// ErrInputAmbiguous is returned when scores still tie after perturbation.
var ErrInputAmbiguous = errors.New("ambiguous ranking")

// BreakTies returns a copy of members where every group of exactly equal
// scores has its first member (input order) raised by TieEpsilon and its
// last member lowered by TieEpsilon. A tie that survives is rejected.
// TODO: replace with a stable sort by seller identity once persisted
// results no longer need to match the epsilon-shifted scores.
func BreakTies(members [model.NumSellers]model.Member) ([model.NumSellers]model.Member, error) {
	out := members
	done := [model.NumSellers]bool{}
	for i := 0; i < model.NumSellers; i++ {
		if done[i] {
			continue
		}
		last := -1
		for j := i + 1; j < model.NumSellers; j++ {
			if members[j].Score == members[i].Score {
				done[j] = true
				last = j
			}
		}
		if last >= 0 {
			out[i].Score += TieEpsilon
			out[last].Score -= TieEpsilon
		}
	}
	for i := 0; i < model.NumSellers; i++ {
		for j := i + 1; j < model.NumSellers; j++ {
			if out[i].Score == out[j].Score {
				return out, fmt.Errorf("%s and %s both score %v after tie-break: %w",
					out[i].Seller, out[j].Seller, out[i].Score, ErrInputAmbiguous)
			}
		}
	}
	return out, nil
}

// Rank sorts members by descending score and returns the rank-ordered
// scores with the rank -> seller ordering.
func Rank(members [model.NumSellers]model.Member) ([model.NumSellers]float64, model.Ordering) {
	sorted := members
	sort.SliceStable(sorted[:], func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	var scores [model.NumSellers]float64
	var ordering model.Ordering
	for i, m := range sorted {
		scores[i] = m.Score
		ordering[i] = m.Seller
	}
	return scores, ordering
}

func validateMembers(members [model.NumSellers]model.Member) error {
	var seen [model.NumSellers]bool
	for _, m := range members {
		if !m.Seller.Valid() {
			return fmt.Errorf("seller %d: %w", int(m.Seller), ErrInputAmbiguous)
		}
		if seen[m.Seller] {
			return fmt.Errorf("seller %s listed twice: %w", m.Seller, ErrInputAmbiguous)
		}
		seen[m.Seller] = true
	}
	return nil
}

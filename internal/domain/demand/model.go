package demand

import (
	"fmt"
	"math"

	"github.com/okian/bertrand/internal/domain/model"
)

// Model computes demand shares for rank-ordered prices and qualities.
// Quality vectors must be strictly descending; see ValidateScores.
type Model struct {
	Dist Distribution
	// Squared raises quality scores to the power 2 in the indifference
	// threshold instead of 1.
	Squared bool
}

// New returns a Model over dist.
func New(dist Distribution, squared bool) Model {
	return Model{Dist: dist, Squared: squared}
}

func (m Model) quality(a float64) float64 {
	if m.Squared {
		return a * a
	}
	return a
}

// Sigma is the valuation threshold at which a customer is indifferent
// between slots i and j.
func (m Model) Sigma(i, j int, p model.PriceVector, a [model.NumSellers]float64) float64 {
	return (p[i] - p[j]) / (m.quality(a[i]) - m.quality(a[j]))
}

// Shares returns each rank slot's demand share. Any real price vector is
// accepted; the result always lies in [0, 1] per slot.
func (m Model) Shares(p model.PriceVector, a [model.NumSellers]float64) [model.NumSellers]float64 {
	s01 := m.Sigma(0, 1, p, a)
	s02 := m.Sigma(0, 2, p, a)
	s12 := m.Sigma(1, 2, p, a)
	return [model.NumSellers]float64{
		1 - m.Dist.CDF(math.Max(s01, s02)),
		m.Dist.CDF(s01 - s12),
		m.Dist.CDF(math.Min(s12, s02)),
	}
}

// PriceCeiling bounds the prices at which any slot still sells: no slot
// has positive demand above the highest price in p plus the widest quality
// gap times the top of the valuation support.
func (m Model) PriceCeiling(p model.PriceVector, a [model.NumSellers]float64) float64 {
	hi, qmax, qmin := 0.0, math.Inf(-1), math.Inf(1)
	for i := range p {
		if !math.IsNaN(p[i]) && !math.IsInf(p[i], 0) {
			hi = math.Max(hi, p[i])
		}
		q := m.quality(a[i])
		qmax = math.Max(qmax, q)
		qmin = math.Min(qmin, q)
	}
	ceiling := hi + m.Dist.Upper()*(qmax-qmin)
	if math.IsNaN(ceiling) || math.IsInf(ceiling, 0) || ceiling <= 0 {
		return hi + 1
	}
	return ceiling
}

// ValidateScores rejects quality vectors where a slot pairing would divide
// by zero or where rank order is not strictly descending.
func (m Model) ValidateScores(a [model.NumSellers]float64) error {
	for i := 0; i < model.NumSellers; i++ {
		if math.IsNaN(a[i]) || math.IsInf(a[i], 0) {
			return fmt.Errorf("score[%d]=%v: %w", i, a[i], ErrModelEvaluation)
		}
	}
	for i := 0; i < model.NumSellers-1; i++ {
		for j := i + 1; j < model.NumSellers; j++ {
			if m.quality(a[i]) <= m.quality(a[j]) {
				return fmt.Errorf("score[%d]=%v not above score[%d]=%v: %w", i, a[i], j, a[j], ErrModelEvaluation)
			}
		}
	}
	return nil
}

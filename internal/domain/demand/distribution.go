// Package demand models how customers with heterogeneous willingness to pay
// split between three vertically differentiated sellers.
package demand

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution kinds accepted by NewDistribution.
const (
	KindUniform         = "uniform"
	KindTruncatedNormal = "truncnormal"
)

// Sentinel kinds for demand errors.
var (
	ErrInvalidDistribution = errors.New("invalid threshold distribution")
	ErrModelEvaluation     = errors.New("model evaluation error")
)

// Distribution is the cumulative distribution N(theta) of the customer
// valuation threshold on [0, ThetaMax].
type Distribution interface {
	CDF(theta float64) float64
	// Upper is the right end of the support, where CDF reaches 1.
	Upper() float64
}

// Uniform spreads thresholds evenly over [0, ThetaMax].
type Uniform struct {
	ThetaMax float64
}

// CDF is 0 below zero, 1 at or above ThetaMax and linear in between.
func (u Uniform) CDF(theta float64) float64 {
	if v, ok := clamp(theta, u.ThetaMax); ok {
		return v
	}
	return theta / u.ThetaMax
}

// Upper returns ThetaMax.
func (u Uniform) Upper() float64 { return u.ThetaMax }

// TruncatedNormal is a normal distribution restricted to [0, ThetaMax].
type TruncatedNormal struct {
	ThetaMax float64

	norm distuv.Normal
	lo   float64
	mass float64
}

// NewTruncatedNormal builds the truncated distribution, rejecting
// parameters that leave no probability mass on [0, thetaMax].
func NewTruncatedNormal(mean, stddev, thetaMax float64) (*TruncatedNormal, error) {
	if thetaMax <= 0 || stddev <= 0 || math.IsNaN(mean) {
		return nil, fmt.Errorf("mean=%v sd=%v theta_max=%v: %w", mean, stddev, thetaMax, ErrInvalidDistribution)
	}
	norm := distuv.Normal{Mu: mean, Sigma: stddev}
	lo := norm.CDF(0)
	mass := norm.CDF(thetaMax) - lo
	if mass <= 0 || math.IsNaN(mass) {
		return nil, fmt.Errorf("no mass on [0, %v]: %w", thetaMax, ErrInvalidDistribution)
	}
	return &TruncatedNormal{ThetaMax: thetaMax, norm: norm, lo: lo, mass: mass}, nil
}

// CDF is 0 below zero, 1 at or above ThetaMax and the renormalised
// normal CDF in between.
func (t *TruncatedNormal) CDF(theta float64) float64 {
	if v, ok := clamp(theta, t.ThetaMax); ok {
		return v
	}
	v := (t.norm.CDF(theta) - t.lo) / t.mass
	return math.Max(0, math.Min(1, v))
}

// Upper returns ThetaMax.
func (t *TruncatedNormal) Upper() float64 { return t.ThetaMax }

// NewDistribution builds a Distribution from configuration values.
func NewDistribution(kind string, mean, stddev, thetaMax float64) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindUniform:
		if thetaMax <= 0 {
			return nil, fmt.Errorf("theta_max=%v: %w", thetaMax, ErrInvalidDistribution)
		}
		return Uniform{ThetaMax: thetaMax}, nil
	case KindTruncatedNormal, "truncated_normal":
		return NewTruncatedNormal(mean, stddev, thetaMax)
	default:
		return nil, fmt.Errorf("kind %q: %w", kind, ErrInvalidDistribution)
	}
}

// clamp handles the boundary region shared by every distribution. NaN
// thresholds come from 0/0 price differences and count as no demand.
func clamp(theta, thetaMax float64) (float64, bool) {
	switch {
	case math.IsNaN(theta), theta < 0:
		return 0, true
	case theta >= thetaMax:
		return 1, true
	default:
		return 0, false
	}
}

// Package scenario holds the quality-score datasets the equilibrium runs
// are computed for.
package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/bertrand/internal/config"
	"github.com/okian/bertrand/internal/domain/model"
)

// ErrInvalidScenario is returned for datasets that do not cover every
// partition with each seller exactly once.
var ErrInvalidScenario = errors.New("invalid scenario")

// Built-in scenario names.
const (
	Quantity  = "quantity"
	Dirichlet = "dirichlet"
)

func m(s model.Seller, score float64) model.Member {
	return model.Member{Seller: s, Score: score}
}

// Defaults returns the two built-in datasets: federated models trained on
// skewed data quantities and on non-iid label splits.
func Defaults() []model.Scenario {
	quantity := model.Scenario{
		Name:        Quantity,
		Description: "Custom Quantity: A=1000, B=2000, C=8000",
	}
	soloA, soloB, soloC := m(model.A, .5004), m(model.B, .6116), m(model.C, .7091)
	quantity.Partitions[model.ABC] = [model.NumSellers]model.Member{m(model.A, .8810), m(model.B, .8821), m(model.C, .8817)}
	quantity.Partitions[model.AB_C] = [model.NumSellers]model.Member{m(model.A, .7976), m(model.B, .8007), soloC}
	quantity.Partitions[model.AC_B] = [model.NumSellers]model.Member{m(model.A, .8550), soloB, m(model.C, .8608)}
	quantity.Partitions[model.A_BC] = [model.NumSellers]model.Member{soloA, m(model.B, .8762), m(model.C, .8732)}
	quantity.Partitions[model.A_B_C_] = [model.NumSellers]model.Member{soloA, soloB, soloC}

	dirichlet := model.Scenario{
		Name:        Dirichlet,
		Description: "Non-iid Label Dirichlet: A=3491, B=3029, C=2480",
	}
	soloA, soloB, soloC = m(model.A, .6085), m(model.B, .6394), m(model.C, .5932)
	dirichlet.Partitions[model.ABC] = [model.NumSellers]model.Member{m(model.A, .8681), m(model.B, .8668), m(model.C, .8655)}
	dirichlet.Partitions[model.AB_C] = [model.NumSellers]model.Member{m(model.A, .8440), m(model.B, .8453), soloC}
	dirichlet.Partitions[model.AC_B] = [model.NumSellers]model.Member{m(model.A, .8301), soloB, m(model.C, .8359)}
	dirichlet.Partitions[model.A_BC] = [model.NumSellers]model.Member{soloA, m(model.B, .8347), m(model.C, .8320)}
	dirichlet.Partitions[model.A_B_C_] = [model.NumSellers]model.Member{soloA, soloB, soloC}

	return []model.Scenario{quantity, dirichlet}
}

// FromConfig converts configured datasets, falling back to Defaults when
// none are configured.
func FromConfig(cfgs []config.ScenarioConfig) ([]model.Scenario, error) {
	if len(cfgs) == 0 {
		return Defaults(), nil
	}
	out := make([]model.Scenario, 0, len(cfgs))
	seen := map[string]bool{}
	for _, c := range cfgs {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: scenario without name", ErrInvalidScenario)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario %q", ErrInvalidScenario, c.Name)
		}
		seen[c.Name] = true

		sc := model.Scenario{Name: c.Name, Description: c.Description}
		covered := map[model.PartitionID]bool{}
		for name, members := range c.Partitions {
			p, err := model.ParsePartitionID(name)
			if err != nil {
				return nil, fmt.Errorf("%w: scenario %q: %w", ErrInvalidScenario, c.Name, err)
			}
			if len(members) != model.NumSellers {
				return nil, fmt.Errorf("%w: scenario %q partition %s has %d members", ErrInvalidScenario, c.Name, p, len(members))
			}
			for i, mc := range members {
				s, err := model.ParseSeller(mc.Seller)
				if err != nil {
					return nil, fmt.Errorf("%w: scenario %q partition %s: %w", ErrInvalidScenario, c.Name, p, err)
				}
				sc.Partitions[p][i] = model.Member{Seller: s, Score: mc.Score}
			}
			covered[p] = true
		}
		if len(covered) != model.NumPartitions {
			return nil, fmt.Errorf("%w: scenario %q covers %d of %d partitions", ErrInvalidScenario, c.Name, len(covered), model.NumPartitions)
		}
		if err := Validate(sc); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// Validate checks every partition lists A, B and C once with a finite
// score in (0, 1].
func Validate(sc model.Scenario) error {
	for _, p := range model.AllPartitions {
		var seen [model.NumSellers]bool
		for _, mem := range sc.Partitions[p] {
			if !mem.Seller.Valid() || seen[mem.Seller] {
				return fmt.Errorf("%w: scenario %q partition %s must list each seller once", ErrInvalidScenario, sc.Name, p)
			}
			seen[mem.Seller] = true
			if math.IsNaN(mem.Score) || mem.Score <= 0 || mem.Score > 1 {
				return fmt.Errorf("%w: scenario %q partition %s seller %s score %v outside (0, 1]", ErrInvalidScenario, sc.Name, p, mem.Seller, mem.Score)
			}
		}
	}
	return nil
}

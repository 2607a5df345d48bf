// Package stability tests coalition structures for core stability: a
// structure is blocked when some set of sellers could form its own group
// and every member would strictly gain.
package stability

import (
	"fmt"
	"strings"

	"github.com/okian/bertrand/internal/domain/model"
)

// StableReason is the verdict reason for an unblocked partition.
const StableReason = "Core stable"

// Deviation is a candidate blocking coalition together with the partition
// whose payoffs it would earn.
type Deviation struct {
	Coalition []model.Seller
	Source    model.PartitionID
}

// Name renders the coalition as concatenated seller names.
func (d Deviation) Name() string {
	var b strings.Builder
	for _, s := range d.Coalition {
		b.WriteString(s.String())
	}
	return b.String()
}

func (d Deviation) reason() string {
	if len(d.Coalition) == 1 {
		return fmt.Sprintf("Not stable due to %s in %s", d.Coalition[0], d.Source)
	}
	return fmt.Sprintf("Not stable due to %s", d.Source)
}

// candidates in checking order: grand coalition, pairs, singletons.
var candidates = []Deviation{ //nolint:gochecknoglobals // fixed deviation table
	{Coalition: []model.Seller{model.A, model.B, model.C}, Source: model.ABC},
	{Coalition: []model.Seller{model.A, model.B}, Source: model.AB_C},
	{Coalition: []model.Seller{model.A, model.C}, Source: model.AC_B},
	{Coalition: []model.Seller{model.B, model.C}, Source: model.A_BC},
	{Coalition: []model.Seller{model.A}, Source: model.A_B_C_},
	{Coalition: []model.Seller{model.B}, Source: model.A_B_C_},
	{Coalition: []model.Seller{model.C}, Source: model.A_B_C_},
}

// Alternatives lists the deviations checked against partition p. A
// coalition that is already a group of p cannot block it.
func Alternatives(p model.PartitionID) []Deviation {
	out := make([]Deviation, 0, len(candidates))
	for _, d := range candidates {
		if p.HasGroup(d.Coalition) {
			continue
		}
		out = append(out, Deviation{Coalition: append([]model.Seller(nil), d.Coalition...), Source: d.Source})
	}
	return out
}

// Blocks reports whether every member of d strictly prefers its payoff
// under d.Source to its payoff under current.
func Blocks(table *model.Table, current model.PartitionID, d Deviation) bool {
	for _, s := range d.Coalition {
		if !(table.At(d.Source, s) > table.At(current, s)) {
			return false
		}
	}
	return true
}

// CheckPartition returns the verdict for one partition of the profit table.
func CheckPartition(table *model.Table, p model.PartitionID) model.Verdict {
	for _, d := range Alternatives(p) {
		if Blocks(table, p, d) {
			return model.Verdict{Partition: p, Stable: false, Reason: d.reason()}
		}
	}
	return model.Verdict{Partition: p, Stable: true, Reason: StableReason}
}

// Check returns a verdict for every partition in table order.
func Check(table *model.Table) [model.NumPartitions]model.Verdict {
	var out [model.NumPartitions]model.Verdict
	for _, p := range model.AllPartitions {
		out[p] = CheckPartition(table, p)
	}
	return out
}

package model

// PriceVector holds one price per rank slot (0 = highest quality).
type PriceVector [NumSellers]float64

// ProfitVector holds one profit per rank slot.
type ProfitVector [NumSellers]float64

// Ordering maps rank slot -> seller identity.
type Ordering [NumSellers]Seller

// Outcome is the converged equilibrium for one partition.
type Outcome struct {
	Partition PartitionID  `json:"partition"`
	Prices    PriceVector  `json:"prices"`
	Profits   ProfitVector `json:"profits"`
	Ordering  Ordering     `json:"ordering"`
	Cycles    int          `json:"cycles"`
}

// ToSeller reorders a rank-indexed vector into seller order.
func (o Ordering) ToSeller(v [NumSellers]float64) [NumSellers]float64 {
	var out [NumSellers]float64
	for rank, s := range o {
		out[s] = v[rank]
	}
	return out
}

// ToRank reorders a seller-indexed vector into rank order.
func (o Ordering) ToRank(v [NumSellers]float64) [NumSellers]float64 {
	var out [NumSellers]float64
	for rank, s := range o {
		out[rank] = v[s]
	}
	return out
}

// PricesBySeller reorders the rank-ordered prices by seller identity.
func (o Outcome) PricesBySeller() [NumSellers]float64 {
	return o.Ordering.ToSeller(o.Prices)
}

// ProfitsBySeller reorders the rank-ordered profits by seller identity.
func (o Outcome) ProfitsBySeller() [NumSellers]float64 {
	return o.Ordering.ToSeller(o.Profits)
}

// Table is a [partition][seller] matrix of prices or profits.
type Table [NumPartitions][NumSellers]float64

// At returns the value for seller s under partition p.
func (t *Table) At(p PartitionID, s Seller) float64 {
	return t[p][s]
}

// Set stores the value for seller s under partition p.
func (t *Table) Set(p PartitionID, s Seller, v float64) {
	t[p][s] = v
}

// Verdict is the core-stability result for one partition.
type Verdict struct {
	Partition PartitionID `json:"partition"`
	Stable    bool        `json:"stable"`
	Reason    string      `json:"reason"`
}

// Scenario is a named quality-score dataset covering all five partitions.
type Scenario struct {
	Name        string
	Description string
	Partitions  [NumPartitions][NumSellers]Member
}

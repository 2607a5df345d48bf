package model

import (
	"fmt"
	"strings"
)

// NumPartitions is the number of coalition structures over three sellers.
const NumPartitions = 5

// PartitionID names a coalition structure. The integer value is the row
// index used by price and profit tables.
type PartitionID int

// Coalition structures in canonical table order.
const (
	ABC PartitionID = iota
	AB_C
	AC_B
	A_BC
	A_B_C_
)

// AllPartitions lists partitions in table order.
var AllPartitions = [NumPartitions]PartitionID{ABC, AB_C, AC_B, A_BC, A_B_C_} //nolint:gochecknoglobals // fixed enum listing

var partitionNames = [NumPartitions]string{"ABC", "AB_C", "AC_B", "A_BC", "A_B_C_"} //nolint:gochecknoglobals // fixed enum names

var partitionGroups = [NumPartitions][][]Seller{ //nolint:gochecknoglobals // fixed enum groups
	ABC:    {{A, B, C}},
	AB_C:   {{A, B}, {C}},
	AC_B:   {{A, C}, {B}},
	A_BC:   {{A}, {B, C}},
	A_B_C_: {{A}, {B}, {C}},
}

func (p PartitionID) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Partition(%d)", int(p))
	}
	return partitionNames[p]
}

// Valid reports whether p is one of the five structures.
func (p PartitionID) Valid() bool {
	return p >= ABC && p <= A_B_C_
}

// Groups returns a copy of the coalitions making up the partition.
func (p PartitionID) Groups() [][]Seller {
	if !p.Valid() {
		return nil
	}
	src := partitionGroups[p]
	out := make([][]Seller, len(src))
	for i, g := range src {
		out[i] = append([]Seller(nil), g...)
	}
	return out
}

// HasGroup reports whether the exact set of sellers forms one group of p.
func (p PartitionID) HasGroup(set []Seller) bool {
	if !p.Valid() {
		return false
	}
	for _, g := range partitionGroups[p] {
		if sameSet(g, set) {
			return true
		}
	}
	return false
}

// ParsePartitionID accepts the canonical names, ignoring case.
func ParsePartitionID(v string) (PartitionID, error) {
	name := strings.ToUpper(strings.TrimSpace(v))
	for i, n := range partitionNames {
		if n == name {
			return PartitionID(i), nil
		}
	}
	return 0, fmt.Errorf("partition %q: %w", v, ErrUnknownName)
}

func sameSet(a, b []Seller) bool {
	if len(a) != len(b) {
		return false
	}
	var mask int
	for _, s := range a {
		mask |= 1 << uint(s)
	}
	for _, s := range b {
		if mask&(1<<uint(s)) == 0 {
			return false
		}
	}
	return true
}

// MarshalText encodes the partition by its canonical name.
func (p PartitionID) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("partition %d: %w", int(p), ErrUnknownName)
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a canonical partition name.
func (p *PartitionID) UnmarshalText(b []byte) error {
	v, err := ParsePartitionID(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

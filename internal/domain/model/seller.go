// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// NumSellers is the number of competing sellers in the market.
const NumSellers = 3

// ErrUnknownName is returned when a seller or partition name cannot be parsed.
var ErrUnknownName = errors.New("unknown name")

// Seller identifies one of the three model owners.
type Seller int

// Sellers in identity order; their integer value doubles as table column.
const (
	A Seller = iota
	B
	C
)

// AllSellers lists sellers in identity order.
var AllSellers = [NumSellers]Seller{A, B, C} //nolint:gochecknoglobals // fixed enum listing

func (s Seller) String() string {
	switch s {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	default:
		return fmt.Sprintf("Seller(%d)", int(s))
	}
}

// Valid reports whether s is one of A, B or C.
func (s Seller) Valid() bool {
	return s >= A && s <= C
}

// ParseSeller accepts "A"/"B"/"C" (case-insensitive) or the index "0"/"1"/"2".
func ParseSeller(v string) (Seller, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "A", "0":
		return A, nil
	case "B", "1":
		return B, nil
	case "C", "2":
		return C, nil
	}
	return 0, fmt.Errorf("seller %q: %w", v, ErrUnknownName)
}

// Member is one seller's entry in a partition: who it is and the quality
// score of the group it belongs to.
type Member struct {
	Seller Seller  `json:"seller"`
	Score  float64 `json:"score"`
}

// MarshalText encodes the seller by name.
func (s Seller) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("seller %d: %w", int(s), ErrUnknownName)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a seller name produced by MarshalText.
func (s *Seller) UnmarshalText(b []byte) error {
	v, err := ParseSeller(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

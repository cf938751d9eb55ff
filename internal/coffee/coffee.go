// Package coffee resolves a coffee tier to the per-day amount it costs.
package coffee

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownTier is returned for labels outside the fixed tier table.
var ErrUnknownTier = errors.New("unknown coffee type")

// Tier is one of the fixed coffee categories.
type Tier int

const (
	Small Tier = iota + 1
	Cappuccino
	FancyLatte
)

var tiers = []Tier{Small, Cappuccino, FancyLatte}

// Tiers lists every tier in menu order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// String returns the menu label.
func (t Tier) String() string {
	switch t {
	case Small:
		return "Small"
	case Cappuccino:
		return "Cappuccino"
	case FancyLatte:
		return "Fancy Latte"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// DailyCost returns the USD price of one cup.
func (t Tier) DailyCost() (decimal.Decimal, error) {
	switch t {
	case Small:
		return decimal.RequireFromString("2.5"), nil
	case Cappuccino:
		return decimal.RequireFromString("3.5"), nil
	case FancyLatte:
		return decimal.RequireFromString("4.5"), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTier, t)
}

// ParseTier matches a label case-insensitively, ignoring spaces, dashes and underscores.
func ParseTier(label string) (Tier, error) {
	want := normalize(label)
	if want != "" {
		for _, t := range tiers {
			if normalize(t.String()) == want {
				return t, nil
			}
		}
	}
	return 0, fmt.Errorf("%w %q (choose %s)", ErrUnknownTier, label, Labels())
}

// Labels returns the accepted labels joined for prompts and usage text.
func Labels() string {
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func (t Tier) MarshalText() ([]byte, error) {
	if _, err := t.DailyCost(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

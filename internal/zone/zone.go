// Package zone resolves delivery fees from a business's neighborhood list.
package zone

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/textfold"
)

var ErrUnknownNeighborhood = errors.New("neighborhood is not in the delivery zones")

// MatchMode controls how a typed neighborhood is compared to zone names.
type MatchMode string

const (
	// MatchExact requires byte-for-byte equality.
	MatchExact MatchMode = "exact"
	// MatchFold ignores case and accents.
	MatchFold MatchMode = "fold"
)

// ParseMode falls back to MatchExact for anything it does not recognise.
func ParseMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), string(MatchFold)) {
		return MatchFold
	}
	return MatchExact
}

type Zone struct {
	ID               uuid.UUID
	NeighborhoodName string
	Fee              decimal.Decimal
}

// Find returns the zone whose name matches neighborhood under mode.
func Find(zones []Zone, neighborhood string, mode MatchMode) (Zone, bool) {
	for _, z := range zones {
		if matches(z.NeighborhoodName, neighborhood, mode) {
			return z, true
		}
	}
	return Zone{}, false
}

// Validate reports whether neighborhood is acceptable. Any value is
// acceptable when no zones are configured.
func Validate(zones []Zone, neighborhood string, mode MatchMode) bool {
	if len(zones) == 0 {
		return true
	}
	_, ok := Find(zones, neighborhood, mode)
	return ok
}

// Fee returns the delivery fee for neighborhood. An empty zone list means
// free delivery everywhere.
func Fee(zones []Zone, neighborhood string, mode MatchMode) (decimal.Decimal, error) {
	if len(zones) == 0 {
		return decimal.Zero, nil
	}
	z, ok := Find(zones, neighborhood, mode)
	if !ok {
		return decimal.Zero, ErrUnknownNeighborhood
	}
	return z.Fee, nil
}

// Search filters zones for the neighborhood picker, keeping name order.
func Search(zones []Zone, query string) []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if textfold.Contains(z.NeighborhoodName, query) {
			out = append(out, z)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return textfold.Fold(out[i].NeighborhoodName) < textfold.Fold(out[j].NeighborhoodName)
	})
	return out
}

func matches(name, typed string, mode MatchMode) bool {
	if mode == MatchFold {
		return textfold.Equal(name, typed)
	}
	return name == typed
}

// FromRows converts stored delivery zones.
func FromRows(rows []database.DeliveryZone) []Zone {
	zones := make([]Zone, 0, len(rows))
	for _, r := range rows {
		zones = append(zones, Zone{
			ID:               r.ID,
			NeighborhoodName: r.NeighborhoodName,
			Fee:              database.FromNumeric(r.Fee),
		})
	}
	return zones
}

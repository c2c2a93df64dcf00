// Package kitchen holds the order status board: the stage machine, the
// column grouping and the demo order simulator.
package kitchen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pedinu/api/internal/database"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Stage describes one board column.
type Stage struct {
	Status database.KitchenOrderStatus  `json:"status"`
	Title  string                       `json:"title"`
	Color  string                       `json:"color"`
	Next   *database.KitchenOrderStatus `json:"next"`
}

func next(s database.KitchenOrderStatus) *database.KitchenOrderStatus { return &s }

// Stages lists the live columns in board order.
var Stages = []Stage{
	{Status: database.KitchenOrderStatusReceived, Title: "Em análise", Color: "red", Next: next(database.KitchenOrderStatusPreparing)},
	{Status: database.KitchenOrderStatusPreparing, Title: "Em produção", Color: "orange", Next: next(database.KitchenOrderStatusReady)},
	{Status: database.KitchenOrderStatusReady, Title: "Prontos para entrega", Color: "green", Next: next(database.KitchenOrderStatusCompleted)},
	{Status: database.KitchenOrderStatusCompleted, Title: "Finalizados", Color: "gray"},
}

// CancelledStage is the archive list shown apart from the live columns.
var CancelledStage = Stage{Status: database.KitchenOrderStatusCancelled, Title: "Cancelados", Color: "slate"}

// StageFor returns the stage config for status.
func StageFor(status database.KitchenOrderStatus) (Stage, bool) {
	if status == database.KitchenOrderStatusCancelled {
		return CancelledStage, true
	}
	for _, s := range Stages {
		if s.Status == status {
			return s, true
		}
	}
	return Stage{}, false
}

// IsTerminal reports whether no further transition is possible from status.
func IsTerminal(status database.KitchenOrderStatus) bool {
	return status == database.KitchenOrderStatusCompleted || status == database.KitchenOrderStatusCancelled
}

// NextStatus returns the stage after status, if any.
func NextStatus(status database.KitchenOrderStatus) (database.KitchenOrderStatus, bool) {
	stage, ok := StageFor(status)
	if !ok || stage.Next == nil {
		return "", false
	}
	return *stage.Next, true
}

// CanTransition allows the configured next stage, or cancellation from any
// non-terminal stage.
func CanTransition(from, to database.KitchenOrderStatus) bool {
	if _, ok := StageFor(from); !ok || IsTerminal(from) {
		return false
	}
	if to == database.KitchenOrderStatusCancelled {
		return true
	}
	n, ok := NextStatus(from)
	return ok && n == to
}

// ValidateTransition wraps ErrInvalidTransition with both statuses.
func ValidateTransition(from, to database.KitchenOrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ParseStatus accepts any known status, terminal ones included.
func ParseStatus(s string) (database.KitchenOrderStatus, bool) {
	status := database.KitchenOrderStatus(strings.ToLower(strings.TrimSpace(s)))
	_, ok := StageFor(status)
	return status, ok
}

// OrderNumber is the short human-readable order reference: the last four
// characters of the id.
func OrderNumber(id uuid.UUID) string {
	s := id.String()
	return s[len(s)-4:]
}

package repository

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/apperr"
)

// PositionUpdate is one entry of a bulk reorder payload.
type PositionUpdate struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Position int       `json:"position" binding:"required,min=1"`
}

// ValidateReorder accepts updates only when they name every current sibling
// exactly once and assign distinct positions that are either the siblings'
// current positions in another order or the compact range 1..n.
func ValidateReorder(current, updates []PositionUpdate) error {
	if len(current) != len(updates) {
		return fmt.Errorf("%w: expected %d entries, got %d", apperr.ErrInvalidReorder, len(current), len(updates))
	}

	known := make(map[uuid.UUID]struct{}, len(current))
	for _, c := range current {
		known[c.ID] = struct{}{}
	}

	seenIDs := make(map[uuid.UUID]struct{}, len(updates))
	seenPos := make(map[int]struct{}, len(updates))
	for _, u := range updates {
		if _, ok := known[u.ID]; !ok {
			return fmt.Errorf("%w: %s is not a sibling", apperr.ErrInvalidReorder, u.ID)
		}
		if _, dup := seenIDs[u.ID]; dup {
			return fmt.Errorf("%w: %s listed twice", apperr.ErrInvalidReorder, u.ID)
		}
		if _, dup := seenPos[u.Position]; dup {
			return fmt.Errorf("%w: position %d used twice", apperr.ErrInvalidReorder, u.Position)
		}
		seenIDs[u.ID] = struct{}{}
		seenPos[u.Position] = struct{}{}
	}

	wanted := sortedPositions(updates)
	if slices.Equal(wanted, sortedPositions(current)) {
		return nil
	}
	for i, p := range wanted {
		if p != i+1 {
			return fmt.Errorf("%w: positions must match the current set or be 1..%d", apperr.ErrInvalidReorder, len(wanted))
		}
	}
	return nil
}

func sortedPositions(list []PositionUpdate) []int {
	out := make([]int, len(list))
	for i, p := range list {
		out[i] = p.Position
	}
	slices.Sort(out)
	return out
}

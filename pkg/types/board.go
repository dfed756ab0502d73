package types

import "strings"

// RootBoardID is the id of the board created by first-run seeding.
const RootBoardID int64 = 1

// Board is the root of a workspace tab.
type Board struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"` // CSS color string; empty is stored as NULL.
}

// Validate checks the caller-supplied fields of a board.
func (b Board) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// Collection is an ordered list of tasks within a board.
type Collection struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Name    string `json:"names"`
	Color   string `json:"color,omitempty"`
}

// Validate checks the caller-supplied fields of a collection.
func (c Collection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if c.BoardID <= 0 {
		return ErrInvalidData
	}
	return nil
}

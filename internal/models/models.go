package models

import (
	"strings"
)

// Todo represents a single to-do item.
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ChangeAction represents the kind of change carried by a feed event.
type ChangeAction string

const (
	ChangeInsert ChangeAction = "insert"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// Change is a single change-feed event for the todos table.
// For delete events only Todo.ID is meaningful.
type Change struct {
	Seq    int64        `json:"seq,omitempty"`
	Action ChangeAction `json:"action"`
	Todo   Todo         `json:"todo"`
}

// IsValidChangeAction checks if an action is one of insert/update/delete.
func IsValidChangeAction(a ChangeAction) bool {
	switch a {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// MaxTextLen is the default upper bound on item text length enforced by the server.
const MaxTextLen = 500

// NormalizeText trims surrounding whitespace from item text.
// An item whose normalized text is empty is rejected everywhere.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// Counts holds the derived remaining/completed counters for a list of items.
type Counts struct {
	Remaining int
	Completed int
}

// CountTodos recomputes the counters from the full list.
func CountTodos(todos []Todo) Counts {
	var c Counts
	for _, t := range todos {
		if t.Completed {
			c.Completed++
		} else {
			c.Remaining++
		}
	}
	return c
}

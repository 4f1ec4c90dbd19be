package domain

import "encoding/json"

// Table names used by the change feed.
const (
	TableRooms     = "rooms"
	TablePlayers   = "players"
	TableQuestions = "questions"
	TableAnswers   = "answers"
)

// ChangeType is the kind of row mutation.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent describes a single row mutation.
// Keys holds the identifying columns (id, room_id, player_id, question_id) of the row.
type ChangeEvent struct {
	Table string            `json:"table"`
	Type  ChangeType        `json:"type"`
	Keys  map[string]string `json:"keys"`
	New   json.RawMessage   `json:"new,omitempty"`
	Old   json.RawMessage   `json:"old,omitempty"`
}

// ChangeFilter selects events for a subscriber. Empty Column matches every row
// of the table, empty Types matches every change type.
type ChangeFilter struct {
	Table  string
	Column string
	Value  string
	Types  []ChangeType
}

// Match reports whether the event passes the filter.
func (f ChangeFilter) Match(ev ChangeEvent) bool {
	if f.Table != "" && f.Table != ev.Table {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == ev.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Column == "" {
		return true
	}
	return ev.Keys[f.Column] == f.Value
}

// Package models contains request/response models and business domain types.
package models

import "strings"

// Difficulty levels accepted on a creation request and echoed by scenarios.
const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// ExistingObject references an interactive object that already exists in the
// client's room prefab, identified by its asset id.
type ExistingObject struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// CreationRequest is the body of POST /room/create.
// The wire key for the user id is "uuid" (client contract).
type CreationRequest struct {
	UserID          string           `json:"uuid"`
	Theme           string           `json:"theme"`
	Keywords        []string         `json:"keywords"`
	Difficulty      string           `json:"difficulty,omitempty"`
	RoomPrefab      string           `json:"roomPrefab"`
	ExistingObjects []ExistingObject `json:"existingObjects,omitempty"`
	FreeModeling    bool             `json:"isFreeModeling,omitempty"`
}

// NormalizedDifficulty returns the request difficulty lowercased and trimmed,
// defaulting to "normal" when absent. It does not reject unknown values —
// that is the request validator's job.
func (r *CreationRequest) NormalizedDifficulty() string {
	d := strings.ToLower(strings.TrimSpace(r.Difficulty))
	if d == "" {
		return DifficultyNormal
	}
	return d
}

// ValidDifficulty reports whether d is one of the accepted difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

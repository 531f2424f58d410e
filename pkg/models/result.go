package models

import (
	"encoding/json"
	"time"
)

// ScriptBundle maps a script (class) name to the Base64-encoded source of
// its fenced block. Keys are unique within a bundle.
type ScriptBundle map[string]string

// ModelHandle pairs an object name with the 3D provider's tracking id, or a
// failure sentinel of the form "error-<kind>-<uuid>" when submission failed.
type ModelHandle struct {
	ObjectName string `json:"objectName"`
	TrackingID string `json:"trackingId"`
}

// ResultDocument is the terminal payload served by GET /room/result. One
// struct covers both outcomes; fields that do not apply are omitted.
// Field names are a client contract — do not rename.
type ResultDocument struct {
	RUID      string          `json:"ruid"`
	UserID    string          `json:"uuid"`
	Success   bool            `json:"success"`
	Scenario  json.RawMessage `json:"scenario,omitempty"`
	Scripts   ScriptBundle    `json:"scripts,omitempty"`
	Models    []ModelHandle   `json:"models,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewCompletedDocument assembles the success payload for a finished job.
func NewCompletedDocument(ruid, userID string, scenario json.RawMessage, scripts ScriptBundle, handles []ModelHandle) *ResultDocument {
	return &ResultDocument{
		RUID:      ruid,
		UserID:    userID,
		Success:   true,
		Scenario:  scenario,
		Scripts:   scripts,
		Models:    handles,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewFailedDocument assembles the failure payload for a job that could not
// complete. The message is the client-visible explanation.
func NewFailedDocument(ruid, userID, message string) *ResultDocument {
	return &ResultDocument{
		RUID:      ruid,
		UserID:    userID,
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UnixMilli(),
	}
}

package domain

import "time"

type ImportMessage struct {
	TaskID        string `json:"task_id"`
	ProjectID     string `json:"project_id"`
	SpreadsheetID string `json:"spreadsheet_id"`
}

type ConfigSavedEvent struct {
	EventType   string    `json:"event_type"`
	ProjectID   string    `json:"project_id"`
	Slug        string    `json:"slug"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
}

const EventConfigSaved = "config.saved"

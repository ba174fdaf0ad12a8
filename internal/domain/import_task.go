package domain

import "time"

type ImportTaskStatus string

const (
	ImportQueued     ImportTaskStatus = "queued"
	ImportProcessing ImportTaskStatus = "processing"
	ImportCompleted  ImportTaskStatus = "completed"
	ImportFailed     ImportTaskStatus = "failed"
)

type ImportTask struct {
	ID            string           `bson:"_id" json:"id"`
	ProjectID     string           `bson:"project_id" json:"project_id"`
	UserID        string           `bson:"user_id" json:"user_id"`
	SpreadsheetID string           `bson:"spreadsheet_id" json:"spreadsheet_id"`
	Status        ImportTaskStatus `bson:"status" json:"status"`
	Categories    int              `bson:"categories" json:"categories"`
	Products      int              `bson:"products" json:"products"`
	ErrorMessage  string           `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt     time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at" json:"updated_at"`
}

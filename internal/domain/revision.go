package domain

import "time"

type ConfigRevision struct {
	ID          string        `bson:"_id" json:"id"`
	ProjectID   string        `bson:"project_id" json:"project_id"`
	EventType   string        `bson:"event_type" json:"event_type"`
	Fingerprint string        `bson:"fingerprint" json:"fingerprint"`
	Config      Configuration `bson:"config" json:"config"`
	SavedAt     time.Time     `bson:"saved_at" json:"saved_at"`
}

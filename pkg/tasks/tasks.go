// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// GenerationTask represents the data structure for an AI generation job.
type GenerationTask struct {
	GenerationID uint   `json:"generation_id"`
	Kind         string `json:"kind"` // image | music
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	UserID       uint   `json:"user_id"`
}

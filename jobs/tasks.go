// Package jobs contains background maintenance tasks run by the asynq worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskUsagePurge is the task type for purging expired usage records.
	TaskUsagePurge = "usage:purge"
)

// UsagePurgePayload describes a usage-record retention purge.
type UsagePurgePayload struct {
	RetentionDays int `json:"retentionDays"`
}

// NewUsagePurgeTask constructs an Asynq task.
func NewUsagePurgeTask(payload UsagePurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUsagePurge, data), nil
}

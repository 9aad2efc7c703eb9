package tasks

import (
	"encoding/json"

	"hestia/models"

	"github.com/hibiken/asynq"
)

const TypeInternalNotify = "notify:internal"

func NewInternalNotifyTask(payload models.NotifyPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeInternalNotify, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}

	return task, opts, nil
}

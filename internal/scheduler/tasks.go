package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReminderDue = "tasks.reminder"

type TaskReminderPayload struct {
	TaskID string `json:"taskId"`
	UserID string `json:"userId"`
	Title  string `json:"title"`
	DueAt  string `json:"dueAt"`
}

func NewTaskReminderTask(payload TaskReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminderDue, data), nil
}

func ParseTaskReminderPayload(task *asynq.Task) (TaskReminderPayload, error) {
	var payload TaskReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TaskReminderPayload{}, err
	}
	return payload, nil
}

package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"crm_backend/platform/config"

	"github.com/alicebob/miniredis/v2"
)

func TestScheduleTaskReminder_EnqueuesScheduledTask(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:       "redis://" + srv.Addr(),
		AsynqQueueName: "crm",
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	dueAt := time.Now().Add(time.Hour).UTC()
	err = client.ScheduleTaskReminder(context.Background(), TaskReminderPayload{
		TaskID: "3f2f0a6e-0000-0000-0000-000000000001",
		UserID: "3f2f0a6e-0000-0000-0000-000000000002",
		Title:  "Call back the plumber",
		DueAt:  dueAt.Format(time.RFC3339),
	}, dueAt.Add(-15*time.Minute))
	if err != nil {
		t.Fatalf("ScheduleTaskReminder: %v", err)
	}

	found := false
	for _, key := range srv.Keys() {
		if strings.Contains(key, "scheduled") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected a scheduled task key in redis, keys: %v", srv.Keys())
	}
}

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Fatalf("expected error when redis url is missing")
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client
	if err := client.ScheduleTaskReminder(context.Background(), TaskReminderPayload{}, time.Now()); err != nil {
		t.Fatalf("nil client must be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close must be a no-op, got %v", err)
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationSettings_RecordSent(t *testing.T) {
	var s NotificationSettings

	sentAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	s.RecordSent("sub-1", sentAt)

	assert.Equal(t, sentAt, s.History["sub-1"])

	later := sentAt.Add(2 * time.Hour)
	s.RecordSent("sub-1", later)
	assert.Equal(t, later, s.History["sub-1"], "repeated send must overwrite the entry")
}

func TestNotificationSettings_SentOn(t *testing.T) {
	s := NotificationSettings{
		History: map[string]time.Time{
			"sub-1": time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	assert.True(t, s.SentOn("sub-1", time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, s.SentOn("sub-1", time.Date(2024, 5, 2, 0, 1, 0, 0, time.UTC)))
	assert.False(t, s.SentOn("unknown", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestNotificationSettings_PruneHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NotificationSettings{
		History: map[string]time.Time{
			"old":      now.AddDate(0, 0, -45),
			"boundary": now.AddDate(0, 0, -30),
			"fresh":    now.AddDate(0, 0, -5),
			"today":    now,
		},
	}

	removed := s.PruneHistory(now, HistoryRetentionDays)

	assert.Equal(t, 1, removed)
	assert.NotContains(t, s.History, "old")
	assert.Contains(t, s.History, "boundary")
	assert.Equal(t, now.AddDate(0, 0, -5), s.History["fresh"])
	assert.Equal(t, now, s.History["today"])
}

func TestNotificationSettings_PruneHistoryEmpty(t *testing.T) {
	var s NotificationSettings
	removed := s.PruneHistory(time.Now(), HistoryRetentionDays)
	assert.Zero(t, removed)
}

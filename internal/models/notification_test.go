package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotification_MarkReadIsIdempotent(t *testing.T) {
	first := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	n := Notification{Type: NotificationLowStock, Priority: PriorityMedium}

	assert.True(t, n.MarkRead(first))
	assert.True(t, n.IsRead)

	assert.False(t, n.MarkRead(first.Add(time.Hour)))
	assert.True(t, n.IsRead)
	assert.Equal(t, first, *n.ReadAt)
}

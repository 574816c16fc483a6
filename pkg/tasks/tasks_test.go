package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrimeChannelTask(t *testing.T) {
	task, err := NewPrimeChannelTask("UC123")
	require.NoError(t, err)
	assert.Equal(t, TypePrimeChannel, task.Type())

	var p PrimeChannelTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "UC123", p.ChannelID)
}

func TestSubscriptionTasksHaveNoPayload(t *testing.T) {
	assert.Equal(t, TypeRefreshSubscriptions, NewRefreshSubscriptionsTask().Type())
	assert.Empty(t, NewRefreshSubscriptionsTask().Payload())
	assert.Equal(t, TypePrimeSubscriptions, NewPrimeSubscriptionsTask().Type())
}

func TestPrimeChannelOptions(t *testing.T) {
	assert.Len(t, PrimeChannelOptions(), 3)
}

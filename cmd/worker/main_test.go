package main

import (
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	task := asynq.NewTask("channel:prime", nil)
	err := errors.New("boom")

	assert.Equal(t, 5*time.Minute, retryDelay(0, err, task))
	assert.Equal(t, 10*time.Minute, retryDelay(1, err, task))
	assert.Equal(t, 40*time.Minute, retryDelay(3, err, task))
	assert.Equal(t, 24*time.Hour, retryDelay(20, err, task))
}

package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSSE(t *testing.T) {
	msg, err := FormatSSE("task.created", map[string]int{"task_id": 1})
	require.NoError(t, err)

	assert.Equal(t, "event: task.created\nretry: 15000\ndata: {\"data\":{\"task_id\":1}}\n\n", msg)
	assert.True(t, strings.HasSuffix(msg, "\n\n"))
}

func TestFormatSSE_EncodeError(t *testing.T) {
	_, err := FormatSSE("bad", make(chan int))
	assert.Error(t, err)
}

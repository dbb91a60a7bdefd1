package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	OrderID string `json:"orderId"`
}

func TestUnmarshalTask(t *testing.T) {
	var p samplePayload
	require.NoError(t, UnmarshalTask(asynq.NewTask("x", []byte(`{"orderId":"abc"}`)), &p))
	assert.Equal(t, "abc", p.OrderID)
}

func TestUnmarshalTask_SkipsRetryOnBadPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("{")} {
		var p samplePayload
		err := UnmarshalTask(asynq.NewTask("x", payload), &p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, asynq.SkipRetry))
	}
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("nope"))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
}

package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob_DecodeRoundTrip(t *testing.T) {
	in := ExportPayload{ExportID: uuid.New(), OrganizationID: uuid.New(), RequestedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	job, err := NewJob(JobTypeReservationExport, in)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobTypeReservationExport, job.Type)
	assert.Zero(t, job.Attempt)

	var out ExportPayload
	require.NoError(t, job.Decode(&out))
	assert.Equal(t, in, out)
}

func TestDecode_WrapsTypeInError(t *testing.T) {
	job := &Job{Type: JobTypeReservationEvent, Payload: []byte(`[`)}
	var v map[string]any
	err := job.Decode(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reservation_event")
}

func TestQueueFor(t *testing.T) {
	q, err := queueFor(JobTypeReservationEvent)
	require.NoError(t, err)
	assert.Equal(t, QueueReservationEvents, q)

	q, err = queueFor(JobTypeReservationExport)
	require.NoError(t, err)
	assert.Equal(t, QueueExports, q)

	_, err = queueFor("other")
	assert.Error(t, err)
}

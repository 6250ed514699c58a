package controller

import (
	"errors"
	"testing"
	"time"

	"commit/models"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWSConn records writes and can be told to fail them.
type fakeWSConn struct {
	jsonWrites   []interface{}
	pings        int
	jsonErr      error
	messageErr   error
	lastMsgTypes []int
}

func (f *fakeWSConn) WriteJSON(v interface{}) error {
	if f.jsonErr != nil {
		return f.jsonErr
	}
	f.jsonWrites = append(f.jsonWrites, v)
	return nil
}

func (f *fakeWSConn) WriteMessage(messageType int, _ []byte) error {
	if f.messageErr != nil {
		return f.messageErr
	}
	f.lastMsgTypes = append(f.lastMsgTypes, messageType)
	if messageType == websocket.PingMessage {
		f.pings++
	}
	return nil
}

func TestPushTickIdleStillPings(t *testing.T) {
	conn := &fakeWSConn{}
	lastSeen := time.Now()

	advanced, err := pushTick(conn, nil, lastSeen)
	require.NoError(t, err)
	assert.Equal(t, lastSeen, advanced)
	assert.Empty(t, conn.jsonWrites)
	assert.Equal(t, 1, conn.pings)
}

func TestPushTickDeadConnectionDetectedWhenIdle(t *testing.T) {
	conn := &fakeWSConn{messageErr: errors.New("broken pipe")}

	_, err := pushTick(conn, nil, time.Now())
	assert.Error(t, err)
}

func TestPushTickAdvancesLastSeen(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	conn := &fakeWSConn{}
	fresh := []models.Update{
		{ID: uuid.New(), Content: "first", CreatedAt: now.Add(1 * time.Minute)},
		{ID: uuid.New(), Content: "second", CreatedAt: now.Add(2 * time.Minute)},
	}

	advanced, err := pushTick(conn, fresh, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Minute), advanced)
	assert.Len(t, conn.jsonWrites, 2)
	assert.Equal(t, 1, conn.pings)
}

func TestPushTickWriteFailureKeepsLastSeen(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	conn := &fakeWSConn{jsonErr: errors.New("broken pipe")}
	fresh := []models.Update{
		{ID: uuid.New(), CreatedAt: now.Add(1 * time.Minute)},
	}

	advanced, err := pushTick(conn, fresh, now)
	assert.Error(t, err)
	assert.Equal(t, now, advanced, "failed delivery must not mark the update as seen")
	assert.Zero(t, conn.pings)
}

package controller

import (
	"time"

	"commit/models"

	"github.com/gofiber/websocket/v2"
)

// updatePollInterval bounds how stale the live feed can get.
const updatePollInterval = 3 * time.Second

// wsWriter is the slice of the websocket connection the stream loop writes
// to, split out so the per-tick logic tests without a real connection.
type wsWriter interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
}

// pushTick writes the fresh updates and then a ping, returning the advanced
// last-seen time. The ping is what reaps dead connections: without it a
// silent client would only fail the write once a fresh update arrived, and
// an idle feed would poll the database for a closed socket forever.
func pushTick(conn wsWriter, fresh []models.Update, lastSeen time.Time) (time.Time, error) {
	for _, u := range fresh {
		if err := conn.WriteJSON(u); err != nil {
			return lastSeen, err
		}
		if u.CreatedAt.After(lastSeen) {
			lastSeen = u.CreatedAt
		}
	}
	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		return lastSeen, err
	}
	return lastSeen, nil
}

// StreamUpdates pushes newly created updates over a websocket. The client
// sends one JSON message with its last-seen timestamp (RFC 3339, optional);
// after that the server polls and writes every update created since.
func (uc *UpdateController) StreamUpdates(c *websocket.Conn) {
	defer c.Close()

	var input struct {
		Since string `json:"since"`
	}
	if err := c.ReadJSON(&input); err != nil {
		uc.Logger.Printf("Error reading JSON: %v", err)
		return
	}

	lastSeen := time.Now()
	if input.Since != "" {
		parsed, err := time.Parse(time.RFC3339, input.Since)
		if err != nil {
			uc.Logger.Printf("Invalid since timestamp: %v", err)
			return
		}
		lastSeen = parsed
	}

	ticker := time.NewTicker(updatePollInterval)
	defer ticker.Stop()

	for range ticker.C {
		var fresh []models.Update
		if err := uc.DB.Where("created_at > ?", lastSeen).
			Order("created_at ASC").
			Find(&fresh).Error; err != nil {
			uc.Logger.Printf("Failed to poll updates: %v", err)
			return
		}

		var err error
		lastSeen, err = pushTick(c, fresh, lastSeen)
		if err != nil {
			// Normal client disconnect lands here too
			return
		}
	}
}

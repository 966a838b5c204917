package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/session"
)

// StreamHandler ingests motion samples over a websocket, one JSON sample
// per text message, at the sensor collaborator's native rate.
type StreamHandler struct {
	log      *zap.Logger
	sessions *session.Manager
	upgrader websocket.Upgrader
}

func NewStreamHandler(log *zap.Logger, sessions *session.Manager) *StreamHandler {
	return &StreamHandler{
		log:      log,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The sensor page and the API share an origin in kiosk
			// deployments; cross-origin sensors are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and forwards each sample to the caller's
// session. Malformed messages are dropped; the loop ends when the client
// disconnects.
func (h *StreamHandler) Stream(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session query parameter required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctrl := h.sessions.Get(sessionID)
	h.log.Info("Sample stream connected", zap.String("session", sessionID))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Sample stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		var raw struct {
			X         float64              `json:"x"`
			Y         float64              `json:"y"`
			Z         float64              `json:"z"`
			Rotation  *models.RotationRate `json:"rotation"`
			Timestamp int64                `json:"timestamp"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			h.log.Debug("Dropping malformed stream sample", zap.Error(err))
			continue
		}
		ctrl.OnMotionSample(models.NewMotionSample(raw.X, raw.Y, raw.Z, raw.Rotation, raw.Timestamp))
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/metrics"
	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/session"
	"github.com/drelsherif/shaky/internal/utils"
)

const sessionIDKey = "sessionID"

// AssessmentHandler exposes phase control, event ingestion, and result
// retrieval for the motor assessment.
type AssessmentHandler struct {
	log      *zap.Logger
	sessions *session.Manager
	protocol *models.Protocol
}

func NewAssessmentHandler(log *zap.Logger, sessions *session.Manager, protocol *models.Protocol) *AssessmentHandler {
	return &AssessmentHandler{log: log, sessions: sessions, protocol: protocol}
}

// sessionID returns the caller's session ID from the cookie session,
// minting one on first contact.
func (h *AssessmentHandler) sessionID(c *gin.Context) string {
	store := sessions.Default(c)
	if id, ok := store.Get(sessionIDKey).(string); ok && id != "" {
		return id
	}

	id, err := utils.GenerateSecureToken(16)
	if err != nil {
		// Fall back to the client address; still unique enough per kiosk.
		id = c.ClientIP()
	}
	store.Set(sessionIDKey, id)
	if err := store.Save(); err != nil {
		h.log.Warn("Failed to save session cookie", zap.Error(err))
	}
	return id
}

// sessionIDFromCookie reads the session ID without minting a new one.
func sessionIDFromCookie(c *gin.Context) string {
	store := sessions.Default(c)
	if id, ok := store.Get(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// CreateSession resets the caller's assessment session.
func (h *AssessmentHandler) CreateSession(c *gin.Context) {
	id := h.sessionID(c)
	h.sessions.Reset(id)
	c.JSON(http.StatusOK, gin.H{"sessionId": id})
}

// GetProtocol returns the ordered phase sequence the collaborator drives.
func (h *AssessmentHandler) GetProtocol(c *gin.Context) {
	c.JSON(http.StatusOK, h.protocol)
}

type startPhaseRequest struct {
	Kind            models.TestKind `json:"kind" binding:"required"`
	Hand            models.Hand     `json:"hand" binding:"required"`
	DurationSeconds float64         `json:"durationSeconds"`
}

// StartPhase begins a timed test phase for the caller's session.
func (h *AssessmentHandler) StartPhase(c *gin.Context) {
	var req startPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phase request"})
		return
	}

	ctrl := h.sessions.Get(h.sessionID(c))
	if err := ctrl.StartPhase(req.Kind, req.Hand, req.DurationSeconds); err != nil {
		if err == session.ErrPhaseActive {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

// StopPhase closes the active phase, runs analysis, and returns the
// just-published result with its interpretation text.
func (h *AssessmentHandler) StopPhase(c *gin.Context) {
	ctrl := h.sessions.Get(h.sessionID(c))

	state, hand := ctrl.CurrentState()
	if state == session.Idle {
		c.JSON(http.StatusConflict, gin.H{"error": "no active phase"})
		return
	}

	kind := models.TappingTest
	if state == session.TremorActive {
		kind = models.TremorTest
	}

	ctrl.StopPhase()
	h.writeResult(c, ctrl, hand, kind)
}

// Tap records one tap action for the active tapping phase. Out-of-phase
// taps are dropped without error.
func (h *AssessmentHandler) Tap(c *gin.Context) {
	h.sessions.Get(h.sessionID(c)).OnTap()
	c.Status(http.StatusOK)
}

type sampleBatch struct {
	Samples []struct {
		X         float64              `json:"x"`
		Y         float64              `json:"y"`
		Z         float64              `json:"z"`
		Rotation  *models.RotationRate `json:"rotation"`
		Timestamp int64                `json:"timestamp"`
	} `json:"samples"`
}

// Samples ingests a batch of motion samples. Out-of-phase samples are
// dropped without error.
func (h *AssessmentHandler) Samples(c *gin.Context) {
	var batch sampleBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.log.Error("Failed to bind sample batch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	ctrl := h.sessions.Get(h.sessionID(c))
	for _, s := range batch.Samples {
		ctrl.OnMotionSample(models.NewMotionSample(s.X, s.Y, s.Z, s.Rotation, s.Timestamp))
	}
	c.Status(http.StatusOK)
}

// Live returns the bounded recent-window samples for display.
func (h *AssessmentHandler) Live(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "50"))
	if err != nil || n < 1 {
		n = 50
	}
	c.JSON(http.StatusOK, gin.H{
		"samples": h.sessions.Get(h.sessionID(c)).LiveWindow(n),
	})
}

// Result returns the recorded result for one (hand, kind) pair.
func (h *AssessmentHandler) Result(c *gin.Context) {
	hand := models.Hand(c.Param("hand"))
	kind := models.TestKind(c.Param("kind"))
	if (hand != models.LeftHand && hand != models.RightHand) ||
		(kind != models.TappingTest && kind != models.TremorTest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown hand or test kind"})
		return
	}

	h.writeResult(c, h.sessions.Get(h.sessionID(c)), hand, kind)
}

// Summary returns the session record plus derived bilateral metrics.
func (h *AssessmentHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Get(h.sessionID(c)).Summary())
}

func (h *AssessmentHandler) writeResult(c *gin.Context, ctrl *session.Controller, hand models.Hand, kind models.TestKind) {
	record := ctrl.Record()
	tapping := record.Tapping(hand)
	tremor := record.Tremor(hand)

	switch kind {
	case models.TappingTest:
		if tapping == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no result recorded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"result":         tapping,
			"interpretation": metrics.InterpretPhase(tapping, tremor),
		})
	case models.TremorTest:
		if tremor == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no result recorded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"result":         tremor,
			"interpretation": metrics.InterpretPhase(tapping, tremor),
		})
	}
}

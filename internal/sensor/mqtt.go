// Package sensor adapts external motion-sample transports onto the session
// controller's inbound interface.
package sensor

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/models"
)

// SampleSink receives decoded motion samples. Satisfied by
// session.Controller.
type SampleSink interface {
	OnMotionSample(sample models.MotionSample)
}

// MQTTSource subscribes to a broker topic where the sensor collaborator
// publishes one MotionSample JSON document per message.
type MQTTSource struct {
	log    *zap.Logger
	client mqtt.Client
	topic  string
}

// NewMQTTSource connects to the broker and subscribes. Malformed payloads
// are logged and dropped; they never reach the sink.
func NewMQTTSource(log *zap.Logger, broker, clientID, topic string, sink SampleSink) (*MQTTSource, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	log.Info("Connected to MQTT broker", zap.String("broker", broker))

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var raw struct {
			X         float64              `json:"x"`
			Y         float64              `json:"y"`
			Z         float64              `json:"z"`
			Rotation  *models.RotationRate `json:"rotation"`
			Timestamp int64                `json:"timestamp"`
		}
		if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
			log.Warn("Dropping malformed MQTT sample", zap.Error(err))
			return
		}
		sink.OnMotionSample(models.NewMotionSample(raw.X, raw.Y, raw.Z, raw.Rotation, raw.Timestamp))
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("mqtt subscribe: %w", token.Error())
	}
	log.Info("Subscribed to MQTT sample topic", zap.String("topic", topic))

	return &MQTTSource{log: log, client: client, topic: topic}, nil
}

// Publish sends one JSON document to a topic. Used to push completed phase
// results back to the broker for kiosk displays.
func (s *MQTTSource) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}
	token := s.client.Publish(topic, 0, false, data)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", token.Error())
	}
	return nil
}

// Close unsubscribes and disconnects from the broker.
func (s *MQTTSource) Close() {
	s.client.Unsubscribe(s.topic)
	s.client.Disconnect(250)
	s.log.Info("MQTT sample source closed")
}

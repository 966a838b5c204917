package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/config"
	logger "github.com/drelsherif/shaky/internal/logging"
	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/router"
	"github.com/drelsherif/shaky/internal/sensor"
	"github.com/drelsherif/shaky/internal/services"
	"github.com/drelsherif/shaky/internal/session"
)

func main() {
	// Initialize Logger
	log, err := logger.Init(".", logger.Rotation{
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to initialize configuration", zap.Error(err))
	}

	// Load the assessment protocol at startup
	protocol, err := models.LoadProtocol("config/protocol.yaml")
	if err != nil {
		log.Warn("Failed to load protocol file, using built-in sequence", zap.Error(err))
		protocol = defaultProtocol()
	}

	// Session manager plus the janitor that prunes abandoned sessions
	sessionManager := session.NewManager(log)
	services.NewScheduler(log, sessionManager, 30*time.Minute).Start()

	// Optional MQTT sample source feeding the kiosk session; completed
	// phase results are pushed back on the result topic.
	if config.Conf.MQTT.Enabled {
		mqttConf := config.Conf.MQTT
		kiosk := sessionManager.Get("kiosk")
		source, err := sensor.NewMQTTSource(log, mqttConf.Broker, mqttConf.ClientID, mqttConf.Topic, kiosk)
		if err != nil {
			log.Fatal("Failed to start MQTT sample source", zap.Error(err))
		}
		defer source.Close()

		kiosk.SetResultHandler(func(r session.Result) {
			if err := source.Publish(mqttConf.ResultTopic, r); err != nil {
				log.Warn("Failed to publish phase result", zap.Error(err))
			}
		})
	}

	// Setup router, passing the logger to it
	r := router.Setup(log, sessionManager, protocol)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}

// defaultProtocol mirrors config/protocol.yaml for deployments without a
// config directory.
func defaultProtocol() *models.Protocol {
	tapping := config.Conf.Assessment.TappingDurationSeconds
	tremor := config.Conf.Assessment.TremorDurationSeconds
	return &models.Protocol{
		Name: "Standard bilateral motor assessment",
		Phases: []models.ProtocolPhase{
			{Kind: models.TappingTest, Hand: models.RightHand, DurationSeconds: tapping},
			{Kind: models.TappingTest, Hand: models.LeftHand, DurationSeconds: tapping},
			{Kind: models.TremorTest, Hand: models.RightHand, DurationSeconds: tremor},
			{Kind: models.TremorTest, Hand: models.LeftHand, DurationSeconds: tremor},
		},
	}
}

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"energymon/internal/db"
	"energymon/internal/logger"
	"energymon/internal/metrics"
	"energymon/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const readingsTopic = "devices/+/readings"

// readingPayload is the wire format devices publish. A missing ts means
// "now".
type readingPayload struct {
	TS       *time.Time `json:"ts"`
	PowerW   *float64   `json:"power_w"`
	VoltageV *float64   `json:"voltage_v"`
	CurrentA *float64   `json:"current_a"`
	EnergyWh *float64   `json:"energy_wh"`
}

// Subscriber ingests device readings published over MQTT into the store
type Subscriber struct {
	client mqtt.Client
	db     *db.DB
}

// NewSubscriber creates a subscriber over an already-connected client
func NewSubscriber(client mqtt.Client, dbConn *db.DB) *Subscriber {
	return &Subscriber{client: client, db: dbConn}
}

// Start subscribes to the readings topic
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(readingsTopic, 1, s.onReading)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	logger.Info("mqtt ingestion started", zap.String("topic", readingsTopic))
	return nil
}

// Stop disconnects the underlying client
func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
	logger.Info("mqtt ingestion stopped")
}

// onReading handles one published reading. Readings for unknown devices
// are logged and dropped; the broker is open to any client ID.
func (s *Subscriber) onReading(_ mqtt.Client, msg mqtt.Message) {
	deviceID := parseDeviceID(msg.Topic())
	if deviceID == "" {
		logger.Warn("mqtt reading on unexpected topic", zap.String("topic", msg.Topic()))
		return
	}

	var payload readingPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		logger.Warn("mqtt reading payload invalid",
			zap.String("device_id", deviceID), zap.Error(err))
		return
	}

	ctx := context.Background()
	ownerID, err := s.db.DeviceOwner(ctx, deviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("mqtt reading for unknown device", zap.String("device_id", deviceID))
		} else {
			logger.Error("mqtt owner lookup failed", zap.String("device_id", deviceID), zap.Error(err))
		}
		return
	}

	ts := time.Now().UTC()
	if payload.TS != nil {
		ts = *payload.TS
	}
	reading := &models.Reading{
		DeviceID: deviceID,
		TS:       ts,
		PowerW:   payload.PowerW,
		VoltageV: payload.VoltageV,
		CurrentA: payload.CurrentA,
		EnergyWh: payload.EnergyWh,
		Source:   "mqtt",
	}
	if err := s.db.UpsertReading(ctx, ownerID, reading); err != nil {
		logger.Error("mqtt reading upsert failed", zap.String("device_id", deviceID), zap.Error(err))
		return
	}
	metrics.ReadingsIngested.WithLabelValues("mqtt").Inc()
	logger.Debug("mqtt reading stored", zap.String("device_id", deviceID), zap.Time("ts", ts))
}

// parseDeviceID extracts the device segment from devices/<id>/readings
func parseDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "devices" || parts[2] != "readings" {
		return ""
	}
	return parts[1]
}

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/iveel36/spacetime-sim-2020/core/model"
	coremqtt "github.com/iveel36/spacetime-sim-2020/core/mqtt"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
)

// departureMessage is the wire form of one scheduled departure.
type departureMessage struct {
	RunID       string  `json:"run_id"`
	Seq         int     `json:"seq"`
	VehicleID   string  `json:"vehicle_id"`
	VehicleType string  `json:"vehicle_type"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Depart      int     `json:"depart"`
	DepartSpeed float64 `json:"depart_speed"`
}

type completeMessage struct {
	RunID     string `json:"run_id"`
	Complete  bool   `json:"complete"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp"`
}

var _ coremqtt.Publisher = (*SchedulePublisher)(nil)

// SchedulePublisher streams a demand schedule to an MQTT broker.
type SchedulePublisher struct {
	cli     pahoClient
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

// NewSchedulePublisher connects to the broker described by cfg.
func NewSchedulePublisher(cfg Config) (*SchedulePublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	})
	c := newMQTTClient(opts)
	if err := wait(c.Connect(), cfg.Timeout()); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	log.Infof("MQTT connected to %s", cfg.Broker)
	return &SchedulePublisher{
		cli:     c,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.Timeout(),
		log:     log,
	}, nil
}

// Topic returns the topic departures of network are published on.
func (p *SchedulePublisher) Topic(network string) string {
	return fmt.Sprintf("%s/demand/%s", p.prefix, network)
}

// Publish sends every record in order followed by a completion message.
// It stops at the first failed publish or when ctx is done.
func (p *SchedulePublisher) Publish(ctx context.Context, runID, network string, recs []model.DepartureRecord) error {
	topic := p.Topic(network)
	for i, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := departureMessage{
			RunID:       runID,
			Seq:         i,
			VehicleID:   r.VehicleID,
			VehicleType: r.VehicleType,
			Origin:      r.Route.Origin,
			Destination: r.Route.Destination,
			Depart:      r.DepartTime,
			DepartSpeed: r.DepartSpeed,
		}
		if err := p.send(topic, msg); err != nil {
			return fmt.Errorf("publish %s: %w", r.VehicleID, err)
		}
	}
	done := completeMessage{RunID: runID, Complete: true, Count: len(recs), Timestamp: time.Now().UnixMilli()}
	if err := p.send(topic, done); err != nil {
		return fmt.Errorf("publish completion: %w", err)
	}
	p.log.Infof("published %d departures on %s", len(recs), topic)
	return nil
}

func (p *SchedulePublisher) send(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return wait(p.cli.Publish(topic, p.qos, p.retain, payload), p.timeout)
}

// Close disconnects from the broker.
func (p *SchedulePublisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}

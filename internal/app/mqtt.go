// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/rotator"
)

const (
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250
)

// connectMQTT opens a client against cfg.MQTTBroker. The suffix keeps the
// client IDs of the daemon and its viewers apart on the same broker.
func connectMQTT(cfg *config.Config, suffix string) (mqtt.Client, error) {
	clientID := cfg.MQTTClientID
	if suffix != "" {
		clientID += "-" + suffix
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.MQTTBroker, token.Error())
	}
	log.Info().Str("broker", cfg.MQTTBroker).Str("client_id", clientID).Msg("connected to MQTT")
	return client, nil
}

// messagePublisher is the part of mqtt.Client the publisher needs.
type messagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// StatePublisher publishes every applied rotation as a retained JSON
// message. Failures are logged and never stop the rotation loop.
type StatePublisher struct {
	client messagePublisher
	topic  string
}

// NewStatePublisher returns an observer publishing to topic.
func NewStatePublisher(client messagePublisher, topic string) *StatePublisher {
	return &StatePublisher{client: client, topic: topic}
}

// StateApplied implements rotator.Observer.
func (p *StatePublisher) StateApplied(ev rotator.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("state marshal failed")
		return
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Warn().Str("topic", p.topic).Msg("state publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.Warn().Err(err).Str("topic", p.topic).Msg("state publish failed")
		return
	}
	log.Debug().Str("topic", p.topic).Str("state", ev.State.String()).Msg("state published")
}

// decodeEvent parses a state message published by StatePublisher.
func decodeEvent(payload []byte) (rotator.Event, error) {
	var ev rotator.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return rotator.Event{}, fmt.Errorf("decode state message: %w", err)
	}
	if ev.State == "" {
		return rotator.Event{}, fmt.Errorf("decode state message: missing state")
	}
	return ev, nil
}

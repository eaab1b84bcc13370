// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/rotator"
)

// FormatEvent renders a state message as a single console line.
func FormatEvent(ev rotator.Event) string {
	return fmt.Sprintf(
		"[STATE] %-6s (was %-6s)  x=%6.3f y=%6.3f  src=%s raw=(%d,%d,%d)  at %s",
		ev.State, ev.Previous, ev.Vector.X, ev.Vector.Y,
		ev.Reading.Source, ev.Reading.X, ev.Reading.Y, ev.Reading.Z,
		ev.Time.Format("15:04:05"),
	)
}

// RunConsoleMQTT prints every state message published by the daemon until
// ctx is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if cfg.MQTTBroker == "" {
		return errors.New("console needs MQTT_BROKER")
	}
	client, err := connectMQTT(cfg, "console")
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		ev, err := decodeEvent(msg.Payload())
		if err != nil {
			log.Warn().Err(err).Msg("console: ignoring state message")
			return
		}
		fmt.Fprintln(w, FormatEvent(ev))
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicState, token.Error())
	}
	log.Info().Str("topic", cfg.TopicState).Msg("console: subscribed")

	<-ctx.Done()
	log.Info().Msg("console: shutting down")
	return nil
}

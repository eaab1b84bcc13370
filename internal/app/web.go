// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/rotator"
)

const wsWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the viewer is served to the local network
	},
}

// StateHub keeps the latest applied orientation and fans it out to
// websocket clients.
type StateHub struct {
	mu      sync.Mutex
	last    rotator.Event
	have    bool
	clients map[*websocket.Conn]struct{}
}

// NewStateHub returns an empty hub.
func NewStateHub() *StateHub {
	return &StateHub{clients: make(map[*websocket.Conn]struct{})}
}

// Update records ev and pushes it to every connected client. Clients that
// cannot keep up are dropped.
func (h *StateHub) Update(ev rotator.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = ev
	h.have = true
	for conn := range h.clients {
		if err := writeEvent(conn, ev); err != nil {
			log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Last returns the most recent event, if any.
func (h *StateHub) Last() (rotator.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.have
}

// Handler serves the orientation API and the websocket stream.
func (h *StateHub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", h.handleOrientation)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *StateHub) handleOrientation(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.Last()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ev); err != nil {
		log.Warn().Err(err).Msg("orientation encode failed")
	}
}

func (h *StateHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	if h.have {
		if err := writeEvent(conn, h.last); err != nil {
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

func writeEvent(conn *websocket.Conn, ev rotator.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

// RunWeb subscribes to the daemon's state topic and serves it over HTTP
// until ctx is cancelled.
func RunWeb(ctx context.Context, cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("web viewer needs MQTT_BROKER")
	}
	client, err := connectMQTT(cfg, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	hub := NewStateHub()
	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		ev, err := decodeEvent(msg.Payload())
		if err != nil {
			log.Warn().Err(err).Msg("ignoring state message")
			return
		}
		hub.Update(ev)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicState, token.Error())
	}
	log.Info().Str("topic", cfg.TopicState).Msg("subscribed")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

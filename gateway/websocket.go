// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// controlWriteWait bounds control-frame writes (ping/pong/close
// relays) so a stalled peer cannot wedge a pump.
const controlWriteWait = 10 * time.Second

// isWebSocketUpgrade reports whether the request asks to switch to the
// WebSocket protocol.
func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// wsBridge relays WebSocket sessions between a caller and a backend.
type wsBridge struct {
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
	logger   *slog.Logger
}

// newWSBridge builds the bridge. timeout bounds the upstream
// handshake; zero means the dialer blocks until the network decides.
func newWSBridge(timeout time.Duration, logger *slog.Logger) *wsBridge {
	return &wsBridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The auth gate has already vetted the session; the
			// backends these bridges front do not do origin checks
			// of their own.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
		logger: logger,
	}
}

// bridge upgrades the caller and splices it to the backend's WebSocket
// endpoint. Unlike HTTP forwarding, the full original path is
// preserved, app-name prefix included: backends are configured with a
// matching URL base for their socket traffic.
//
// Once the upgrade succeeds no HTTP error can be sent; every failure
// from here on ends the session silently (logged only).
func (b *wsBridge) bridge(w http.ResponseWriter, r *http.Request, route *Route) {
	upstreamURL := wsURL(route.URL.Scheme) + "://" + route.URL.Host + r.URL.Path
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	caller, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error.
		b.logger.Warn("websocket upgrade failed", "app", route.Name, "error", err)
		return
	}
	defer caller.Close()

	b.logger.Info("bridging websocket", "app", route.Name, "target", upstreamURL)

	upstream, _, err := b.dialer.Dial(upstreamURL, nil)
	if err != nil {
		b.logger.Error("upstream websocket dial failed", "app", route.Name, "target", upstreamURL, "error", err)
		deadline := time.Now().Add(controlWriteWait)
		caller.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "upstream unavailable"),
			deadline)
		return
	}
	defer upstream.Close()

	// Two pumps race to completion; whichever direction ends first
	// ends the session. Closing both conns unblocks the survivor, and
	// its result is drained before returning. No attempt is made to
	// flush the other direction's final bytes.
	done := make(chan error, 2)
	go func() { done <- pumpFrames(caller, upstream) }()
	go func() { done <- pumpFrames(upstream, caller) }()

	first := <-done
	caller.Close()
	upstream.Close()
	<-done

	if first != nil && !isExpectedWSClose(first) {
		b.logger.Warn("websocket bridge ended with error", "app", route.Name, "error", first)
		return
	}
	b.logger.Debug("websocket bridge closed", "app", route.Name)
}

// pumpFrames relays frames from src to dst until src ends. Data
// frames keep their message type; pings and pongs are relayed through
// control handlers (they surface during ReadMessage, not as
// messages); a close from src is translated to dst with its code and
// reason. Each pump reads exactly one socket and writes exactly the
// other, so the two directions share no state.
func pumpFrames(src, dst *websocket.Conn) error {
	src.SetPingHandler(func(data string) error {
		return dst.WriteControl(websocket.PingMessage, []byte(data), time.Now().Add(controlWriteWait))
	})
	src.SetPongHandler(func(data string) error {
		return dst.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(controlWriteWait))
	})

	for {
		messageType, payload, err := src.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				deadline := time.Now().Add(controlWriteWait)
				dst.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(closeErr.Code, closeErr.Text), deadline)
			}
			return err
		}
		if err := dst.WriteMessage(messageType, payload); err != nil {
			return err
		}
	}
}

// isExpectedWSClose reports whether err is a normal session ending: a
// clean close handshake or the teardown of the losing pump after the
// winning one closed both sockets.
func isExpectedWSClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}

// wsURL translates a backend HTTP scheme to its WebSocket equivalent.
func wsURL(scheme string) string {
	if scheme == "https" {
		return "wss"
	}
	return "ws"
}

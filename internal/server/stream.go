// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/deck"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to send the generation request after connecting.
	requestWait = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Send buffer size. Progress frames beyond it block the assembler.
	sendBufferSize = 64
)

// handleStream serves GET /api/v1/presentations/stream.
//
// The client sends one GenerateRequest as JSON. The server answers with a
// progress frame per slide and a final complete or error frame, then
// closes. Closing the socket early cancels assembly.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(zap.String("request_id", RequestID(r.Context())))
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(requestWait))

	var body GenerateRequest
	if err := conn.ReadJSON(&body); err != nil {
		s.sendFinal(conn, streamError(fmt.Errorf("%w: %v", errBadJSON, err)))
		return
	}
	if err := validateStruct(&body); err != nil {
		s.sendFinal(conn, streamError(err))
		return
	}
	req, err := s.deckRequest(body)
	if err != nil {
		s.sendFinal(conn, streamError(err))
		return
	}

	// A read error after the request means the client went away.
	_ = conn.SetReadDeadline(time.Time{})
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := make(chan StreamMessage, sendBufferSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := writeFrame(conn, msg); err != nil {
				logger.Debug("stream write failed", zap.Error(err))
				cancel()
				// Drain so progress callbacks never block on a dead socket.
				for range send {
				}
				return
			}
		}
	}()

	req.OnProgress = func(ev deck.Event) {
		msg := newStreamMessage(StreamProgress)
		msg.Index = ev.Index
		msg.Total = ev.Total
		slide := ev.Slide
		msg.Slide = &slide
		msg.Source = ev.Source
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	p, err := s.asm.Assemble(ctx, req)
	var final StreamMessage
	switch {
	case err != nil:
		final = streamError(err)
	default:
		if _, serr := s.store.Save(p); serr != nil {
			logger.Error("stream save failed", zap.Error(serr))
			final = streamError(fmt.Errorf("save presentation: %w", serr))
		} else {
			final = newStreamMessage(StreamComplete)
			final.Presentation = p
		}
	}

	close(send)
	<-writerDone
	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Info("stream cancelled by client")
		return
	}
	s.sendFinal(conn, final)
}

func streamError(err error) StreamMessage {
	msg := newStreamMessage(StreamError)
	var verr *validationError
	if errors.As(err, &verr) {
		msg.Error = verr.Error()
	} else if statusFor(err) == http.StatusInternalServerError {
		msg.Error = "internal server error"
	} else {
		msg.Error = err.Error()
	}
	return msg
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// sendFinal writes the last frame and a normal close.
func (s *Server) sendFinal(conn *websocket.Conn, msg StreamMessage) {
	if err := writeFrame(conn, msg); err != nil {
		s.logger.Debug("stream final write failed", zap.Error(err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, msg.Type),
		time.Now().Add(writeWait))
}

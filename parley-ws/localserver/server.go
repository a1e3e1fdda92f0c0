// Package localserver emulates the API Gateway WebSocket lifecycle over
// gorilla/websocket so the chat handler can be exercised locally in console
// mode: upgrades become $connect events, received frames are routed by their
// body's action field, and closes become $disconnect events.
package localserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	parleyws "github.com/parley-chat/parley-go-chat/parley-ws"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
)

const maxMessageSize = 64 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local development only; this server never fronts real traffic.
		return true
	},
}

type Server struct {
	Handler *parleyws.Handler
	Hub     *Hub
	Logger  zerolog.Logger
}

func New(handler *parleyws.Handler, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		Handler: handler,
		Hub:     hub,
		Logger:  logger,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.serveWS)
	return r
}

func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%v", port)
	s.Logger.Info().Str("addr", addr).Msg("starting local websocket server")
	return http.ListenAndServe(addr, s.Routes())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	connID := uuid.NewV4().String()
	logger := s.Logger.With().Str("connection_id", connID).Logger()

	s.Hub.Register(connID, conn)

	connectReq := s.newEvent(connID, parleyws.RouteConnect, "", r)
	connectReq.RequestContext.ConnectedAt = time.Now().UnixMilli()
	if _, err := s.Handler.HandleEvent(r.Context(), connectReq); err != nil {
		logger.Error().Err(err).Msg("connect handler failed")
		s.Hub.Unregister(connID)
		conn.Close()
		return
	}

	defer func() {
		s.Hub.Unregister(connID)
		conn.Close()
		if _, err := s.Handler.HandleEvent(context.Background(), s.newEvent(connID, parleyws.RouteDisconnect, "", r)); err != nil {
			logger.Error().Err(err).Msg("disconnect handler failed")
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("connection read failed")
			}
			return
		}

		var envelope struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil || envelope.Action == "" {
			logger.Warn().Msg("frame has no routable action")
			continue
		}

		resp, err := s.Handler.HandleEvent(r.Context(), s.newEvent(connID, envelope.Action, string(data), r))
		if err != nil {
			logger.Error().Err(err).Str("route", envelope.Action).Msg("handler failed")
			continue
		}
		if resp.StatusCode >= 400 {
			logger.Warn().Str("route", envelope.Action).Int("status", resp.StatusCode).Str("body", resp.Body).Msg("handler rejected frame")
		}
	}
}

func (s *Server) newEvent(connID, routeKey, body string, r *http.Request) events.APIGatewayWebsocketProxyRequest {
	query := map[string]string{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	return events.APIGatewayWebsocketProxyRequest{
		QueryStringParameters: query,
		Body:                  body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: connID,
			RouteKey:     routeKey,
			DomainName:   r.Host,
			Stage:        "local",
		},
	}
}

// Package parleyws implements the room membership and message fan-out core of
// the parley chat service as a WebSocket API Gateway Lambda handler.
package parleyws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	parleycli "github.com/parley-chat/parley-go-chat/parley-cli"
	"github.com/parley-chat/parley-go-chat/parley-ws/connectiondao"
	"github.com/parley-chat/parley-go-chat/parley-ws/memberdao"
	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	"github.com/rs/zerolog"
)

// Handler handles WebSocket API Gateway events for the chat protocol. Each
// invocation is stateless; the DAOs and the poster are the only shared
// resources and both are safe for concurrent independent calls.
type Handler struct {
	Connections *connectiondao.DAO
	Members     *memberdao.DAO
	Messages    *messagedao.DAO
	Broadcast   *Broadcaster
	Poster      Poster
	Logger      zerolog.Logger
	Metrics     *parleycli.Metrics

	// Endpoint overrides the request-derived management endpoint when set.
	Endpoint string
}

// HandleEvent routes an API Gateway WebSocket event to the appropriate handler.
func (h *Handler) HandleEvent(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	logger := h.Logger.With().
		Str("connection_id", req.RequestContext.ConnectionID).
		Str("route", req.RequestContext.RouteKey).
		Logger()

	if h.Metrics != nil {
		defer func(begin time.Time) {
			h.Metrics.Timing(ctx, parleycli.ResponseTimeMetric, begin,
				map[parleycli.DimensionName]string{parleycli.RouteDimension: req.RequestContext.RouteKey})
		}(time.Now())
	}

	switch req.RequestContext.RouteKey {
	case RouteConnect:
		return h.handleConnect(ctx, logger, req)
	case RouteDisconnect:
		return h.handleDisconnect(ctx, logger, req)
	case RouteJoinRoom:
		return h.handleJoinRoom(ctx, logger, req)
	case RouteSendMessage:
		return h.handleSendMessage(ctx, logger, req)
	default:
		logger.Warn().Msg("unknown route")
		return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Unknown route"}, nil
	}
}

// handleConnect registers the connection. Store faults propagate to the
// invocation boundary rather than being mapped to a status.
func (h *Handler) handleConnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	conn := connectiondao.NewConnection(
		req.RequestContext.ConnectionID,
		req.QueryStringParameters["userId"],
		req.RequestContext.ConnectedAt,
	)

	if err := h.Connections.Put(ctx, conn); err != nil {
		logger.Error().Err(err).Msg("failed to store connection")
		return events.APIGatewayProxyResponse{}, err
	}

	logger.Info().Msg("connection established")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Connected"}, nil
}

// handleDisconnect removes the connection row. Membership rows are left in
// place; stale members surface later as skipped deliveries.
func (h *Handler) handleDisconnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := h.Connections.Delete(ctx, req.RequestContext.ConnectionID); err != nil {
		logger.Error().Err(err).Msg("failed to delete connection")
		return events.APIGatewayProxyResponse{}, err
	}

	logger.Info().Msg("connection closed")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Disconnected"}, nil
}

func (h *Handler) handleJoinRoom(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connID := req.RequestContext.ConnectionID

	join, err := ParseJoinRoom(req.Body)
	if err != nil {
		logger.Error().Err(err).Msg("invalid joinRoom request")
		return serverError(), nil
	}

	// History is read before the membership write so the replay reflects the
	// room as it stood before this member joined.
	history, err := h.Messages.ListHistory(ctx, join.RoomID)
	if err != nil {
		logger.Error().Err(err).Str("room_id", join.RoomID).Msg("failed to list history")
		return serverError(), nil
	}

	if _, err := h.Members.Join(ctx, join.RoomID, connID, join.UserID); err != nil {
		logger.Error().Err(err).Str("room_id", join.RoomID).Msg("failed to join room")
		return serverError(), nil
	}

	data, err := JoinedRoomMessage(join.RoomID, history)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build join reply")
		return serverError(), nil
	}

	if err := h.Poster.PostToConnection(ctx, h.endpoint(req), connID, data); err != nil {
		logger.Error().Err(err).Msg("failed to send join reply")
		return serverError(), nil
	}

	logger.Info().Str("room_id", join.RoomID).Int("history", len(history)).Msg("joined room")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Joined room and sent messages"}, nil
}

func (h *Handler) handleSendMessage(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connID := req.RequestContext.ConnectionID

	msg, err := ParseSendMessage(req.Body)
	switch {
	case errors.Is(err, ErrMissingBody):
		return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Missing body"}, nil
	case errors.Is(err, ErrMissingFields):
		return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Missing required fields"}, nil
	case err != nil:
		logger.Error().Err(err).Msg("invalid sendMessage request")
		return serverError(), nil
	}

	members, err := h.Members.ListMembers(ctx, msg.RoomID)
	if err != nil {
		logger.Error().Err(err).Str("room_id", msg.RoomID).Msg("failed to list members")
		return serverError(), nil
	}

	addresses := make([]string, 0, len(members))
	isMember := false
	for _, member := range members {
		address := member.ConnectionID()
		if address == "" {
			continue
		}
		if address == connID {
			isMember = true
		}
		addresses = append(addresses, address)
	}
	if !isMember {
		logger.Warn().Str("room_id", msg.RoomID).Msg("sender is not a room member")
		return events.APIGatewayProxyResponse{StatusCode: 403, Body: "Not a room member"}, nil
	}

	// One timestamp for both the stored row and the broadcast payload.
	timestamp := time.Now().UnixMilli()

	if _, err := h.Messages.Append(ctx, msg.RoomID, msg.UserID, msg.Content, timestamp); err != nil {
		logger.Error().Err(err).Str("room_id", msg.RoomID).Msg("failed to append message")
		return serverError(), nil
	}

	data, err := marshalChatMessage(ChatMessage{
		UserID:    msg.UserID,
		Content:   msg.Content,
		Timestamp: timestamp,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal chat message")
		return serverError(), nil
	}

	// The member list fetched above is the broadcast list; a membership change
	// between the check and here is an accepted race. The sender is included.
	h.Broadcast.Broadcast(ctx, h.endpoint(req), addresses, data)

	logger.Info().Str("room_id", msg.RoomID).Int("members", len(addresses)).Msg("message sent")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Message sent successfully"}, nil
}

func (h *Handler) endpoint(req events.APIGatewayWebsocketProxyRequest) string {
	if h.Endpoint != "" {
		return h.Endpoint
	}
	return fmt.Sprintf("https://%s/%s", req.RequestContext.DomainName, req.RequestContext.Stage)
}

func serverError() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: 500, Body: "Internal server error"}
}

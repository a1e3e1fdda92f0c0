package parleyws

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
)

// Poster delivers a byte payload to a single connection address. Delivery
// fails if the connection is stale; callers decide whether that matters.
type Poster interface {
	PostToConnection(ctx context.Context, endpoint, connectionID string, data []byte) error
}

// ManagementPoster posts through the API Gateway Management API, caching one
// client per endpoint.
type ManagementPoster struct {
	mgmtMu      sync.RWMutex
	mgmtClients map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
}

func NewManagementPoster() *ManagementPoster {
	return &ManagementPoster{}
}

func (p *ManagementPoster) PostToConnection(ctx context.Context, endpoint, connectionID string, data []byte) error {
	client := p.getManagementClient(endpoint)
	_, err := client.PostToConnectionWithContext(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	return err
}

func (p *ManagementPoster) getManagementClient(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
	p.mgmtMu.RLock()
	if client, ok := p.mgmtClients[endpoint]; ok {
		p.mgmtMu.RUnlock()
		return client
	}
	p.mgmtMu.RUnlock()

	p.mgmtMu.Lock()
	defer p.mgmtMu.Unlock()

	// Double-check after acquiring write lock
	if client, ok := p.mgmtClients[endpoint]; ok {
		return client
	}

	if p.mgmtClients == nil {
		p.mgmtClients = make(map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI)
	}

	sess := session.Must(session.NewSession(aws.NewConfig().WithEndpoint(endpoint)))
	client := apigatewaymanagementapi.New(sess)
	p.mgmtClients[endpoint] = client
	return client
}

// IsGone checks if the error is a GoneException (HTTP 410), indicating the
// WebSocket connection no longer exists.
func IsGone(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "GoneException") ||
		strings.Contains(err.Error(), "410")
}

package fakeddb

import (
	"context"
	"errors"
	"sync"
)

// ErrGone mimics the API Gateway GoneException raised for stale connections.
var ErrGone = errors.New("GoneException: connection is no longer available")

// Delivery records one attempted post to a connection.
type Delivery struct {
	Endpoint     string
	ConnectionID string
	Data         []byte
}

// Poster records every delivery attempt and can be told to fail for specific
// connections.
type Poster struct {
	mu         sync.Mutex
	deliveries []Delivery
	failures   map[string]error
}

func NewPoster() *Poster {
	return &Poster{failures: map[string]error{}}
}

// FailFor makes every post to connID return err.
func (p *Poster) FailFor(connID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[connID] = err
}

func (p *Poster) PostToConnection(_ context.Context, endpoint, connID string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.deliveries = append(p.deliveries, Delivery{
		Endpoint:     endpoint,
		ConnectionID: connID,
		Data:         append([]byte(nil), data...),
	})
	return p.failures[connID]
}

// Deliveries returns every recorded attempt, failed ones included.
func (p *Poster) Deliveries() []Delivery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Delivery(nil), p.deliveries...)
}

// DeliveriesTo returns the payloads attempted against connID.
func (p *Poster) DeliveriesTo(connID string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out [][]byte
	for _, d := range p.deliveries {
		if d.ConnectionID == connID {
			out = append(out, d.Data)
		}
	}
	return out
}

package gateway

import (
	"sync"

	"library-service/internal/domain/money"
	"library-service/pkg/errors"
)

// Registry resolves a gateway_id (as stored on PaymentGatewayConfig) to its
// Gateway implementation. It is built once at startup from the adapters
// whose credentials are set in the environment (see internal/app) and is
// safe for concurrent reads.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

// NewRegistry builds an empty registry. Call Register for every configured
// gateway before serving traffic.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]Gateway)}
}

// Register adds or replaces the adapter bound to a gateway_id.
func (r *Registry) Register(gatewayID string, gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[gatewayID] = gw
}

// Resolve looks up the adapter for a gateway_id, validating it can settle
// the given currency.
func (r *Registry) Resolve(gatewayID string, currency money.Currency) (Gateway, error) {
	r.mu.RLock()
	gw, ok := r.gateways[gatewayID]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.ErrUnknownGateway.WithDetails("gateway_id", gatewayID)
	}
	if !gw.SupportsCurrency(currency) {
		return nil, errors.ErrGatewayUnsupportedCurrency.
			WithDetails("gateway_id", gatewayID).
			WithDetails("currency", string(currency))
	}
	return gw, nil
}

// ByName returns the adapter registered under name, regardless of currency
// support, for use by the webhook dispatcher which only knows the gateway
// name from the request path.
func (r *Registry) ByName(name string) (Gateway, error) {
	r.mu.RLock()
	gw, ok := r.gateways[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrUnknownGateway.WithDetails("gateway_id", name)
	}
	return gw, nil
}

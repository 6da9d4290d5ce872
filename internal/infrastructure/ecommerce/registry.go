package ecommerce

import (
	"fmt"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// Registry resolves marketplace clients by code
type Registry struct {
	clients map[integration.MarketplaceCode]integration.MarketplaceClient
}

// Ensure Registry implements MarketplaceRegistry
var _ integration.MarketplaceRegistry = (*Registry)(nil)

// NewRegistry registers the given clients; a later client replaces an earlier one for the same code
func NewRegistry(clients ...integration.MarketplaceClient) *Registry {
	r := &Registry{clients: make(map[integration.MarketplaceCode]integration.MarketplaceClient, len(clients))}
	for _, c := range clients {
		r.clients[c.Marketplace()] = c
	}
	return r
}

// NewDefaultRegistry builds the Wildberries and Ozon clients from configuration
func NewDefaultRegistry(wb *WildberriesConfig, ozon *OzonConfig) (*Registry, error) {
	wbClient, err := NewWildberriesClient(wb)
	if err != nil {
		return nil, fmt.Errorf("failed to create wildberries client: %w", err)
	}
	ozonClient, err := NewOzonClient(ozon)
	if err != nil {
		return nil, fmt.Errorf("failed to create ozon client: %w", err)
	}
	return NewRegistry(wbClient, ozonClient), nil
}

// Client returns the client for code
func (r *Registry) Client(code integration.MarketplaceCode) (integration.MarketplaceClient, error) {
	c, ok := r.clients[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrClientNotRegistered, code)
	}
	return c, nil
}

package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Credential Entity
// ---------------------------------------------------------------------------

// Credential holds the marketplace API access of one user.
// There is at most one credential per (user, marketplace).
type Credential struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Marketplace MarketplaceCode
	APIKey      string
	ClientID    string
	WarehouseID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCredential creates a credential. Only the API key is mandatory at save time,
// the remaining fields are checked by Validate before every sync.
func NewCredential(userID uuid.UUID, marketplace MarketplaceCode, apiKey, clientID, warehouseID string) (*Credential, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if !marketplace.IsValid() {
		return nil, ErrInvalidMarketplace
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	now := time.Now()
	return &Credential{
		ID:          uuid.New(),
		UserID:      userID,
		Marketplace: marketplace,
		APIKey:      apiKey,
		ClientID:    strings.TrimSpace(clientID),
		WarehouseID: strings.TrimSpace(warehouseID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update replaces the access fields in place
func (c *Credential) Update(apiKey, clientID, warehouseID string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrInvalidAPIKey
	}
	c.APIKey = apiKey
	c.ClientID = strings.TrimSpace(clientID)
	c.WarehouseID = strings.TrimSpace(warehouseID)
	c.UpdatedAt = time.Now()
	return nil
}

// MissingFields lists the required fields that are empty for this marketplace
func (c *Credential) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if c.Marketplace == MarketplaceOzon {
		if strings.TrimSpace(c.ClientID) == "" {
			missing = append(missing, "client_id")
		}
		if strings.TrimSpace(c.WarehouseID) == "" {
			missing = append(missing, "warehouse_id")
		}
	}
	return missing
}

// Validate checks that the credential is complete enough to call the marketplace
func (c *Credential) Validate() error {
	if missing := c.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", ErrConfigurationMissing, c.Marketplace.DisplayName(), strings.Join(missing, ", "))
	}
	if c.Marketplace == MarketplaceOzon {
		if _, err := strconv.ParseInt(c.WarehouseID, 10, 64); err != nil {
			return fmt.Errorf("%w: Ozon warehouse_id must be numeric", ErrConfigurationMissing)
		}
	}
	return nil
}

// Masked returns a copy safe to display, keeping only the last four characters of the key
func (c Credential) Masked() Credential {
	c.APIKey = MaskSecret(c.APIKey)
	return c
}

// MaskSecret hides everything but the last four characters of a secret
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// CredentialRepository defines persistence for marketplace credentials
type CredentialRepository interface {
	// FindByUserAndMarketplace returns ErrCredentialNotFound when absent
	FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode) (*Credential, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]Credential, error)
	// Save inserts or replaces the credential of (user, marketplace)
	Save(ctx context.Context, cred *Credential) error
	Delete(ctx context.Context, userID uuid.UUID, marketplace MarketplaceCode) error
}

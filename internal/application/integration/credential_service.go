package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/domain/shared"
)

// CredentialService manages marketplace credentials
type CredentialService struct {
	credentials integration.CredentialRepository
	clients     integration.MarketplaceRegistry
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(credentials integration.CredentialRepository, clients integration.MarketplaceRegistry, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		credentials: credentials,
		clients:     clients,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Save creates or replaces the credential of (user, marketplace)
func (s *CredentialService) Save(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, req SaveCredentialRequest) (*CredentialResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", validationMessage(err))
	}

	cred, err := s.credentials.FindByUserAndMarketplace(ctx, userID, marketplace)
	switch {
	case err == nil:
		if err := cred.Update(req.APIKey, req.ClientID, req.WarehouseID); err != nil {
			return nil, err
		}
	case errors.Is(err, integration.ErrCredentialNotFound):
		cred, err = integration.NewCredential(userID, marketplace, req.APIKey, req.ClientID, req.WarehouseID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.credentials.Save(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info("Marketplace credential saved",
		zap.String("user_id", userID.String()),
		zap.String("marketplace", marketplace.String()),
		zap.Strings("missing_fields", cred.MissingFields()),
	)
	resp := ToCredentialResponse(cred)
	return &resp, nil
}

// Get returns the masked credential of (user, marketplace)
func (s *CredentialService) Get(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*CredentialResponse, error) {
	cred, err := s.credentials.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		return nil, err
	}
	resp := ToCredentialResponse(cred)
	return &resp, nil
}

// List returns every masked credential of the user
func (s *CredentialService) List(ctx context.Context, userID uuid.UUID) ([]CredentialResponse, error) {
	creds, err := s.credentials.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]CredentialResponse, len(creds))
	for i := range creds {
		out[i] = ToCredentialResponse(&creds[i])
	}
	return out, nil
}

// Delete removes the credential of (user, marketplace)
func (s *CredentialService) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) error {
	if err := s.credentials.Delete(ctx, userID, marketplace); err != nil {
		return err
	}
	s.logger.Info("Marketplace credential deleted",
		zap.String("user_id", userID.String()),
		zap.String("marketplace", marketplace.String()),
	)
	return nil
}

// CheckConnection verifies the saved credential against the marketplace.
// Missing configuration is reported in the result, not as an error.
func (s *CredentialService) CheckConnection(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*ConnectionCheckResponse, error) {
	cred, err := s.credentials.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		if errors.Is(err, integration.ErrCredentialNotFound) {
			return &ConnectionCheckResponse{Success: false, Error: fmt.Sprintf("%s is not configured", marketplace.DisplayName())}, nil
		}
		return nil, err
	}
	if err := cred.Validate(); err != nil {
		return &ConnectionCheckResponse{Success: false, Error: err.Error()}, nil
	}

	client, err := s.clients.Client(marketplace)
	if err != nil {
		return nil, err
	}
	status, err := client.CheckConnection(ctx, *cred)
	if err != nil {
		s.logger.Warn("Connection check failed",
			zap.String("user_id", userID.String()),
			zap.String("marketplace", marketplace.String()),
			zap.Error(err),
		)
		return &ConnectionCheckResponse{Success: false, Error: err.Error()}, nil
	}
	return &ConnectionCheckResponse{Success: status.Success, Message: status.Message, Error: status.Error}, nil
}

// validationMessage reports the first failed field
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return err.Error()
}

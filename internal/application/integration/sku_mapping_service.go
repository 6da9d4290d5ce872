package integration

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/domain/shared"
	csvimport "github.com/retailcrm/backend/internal/infrastructure/import"
)

// SkuMappingService manages SKU mappings
type SkuMappingService struct {
	mappings integration.SkuMappingRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSkuMappingService creates a new SkuMappingService
func NewSkuMappingService(mappings integration.SkuMappingRepository, logger *zap.Logger) *SkuMappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkuMappingService{
		mappings: mappings,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// List returns every mapping of (user, marketplace)
func (s *SkuMappingService) List(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) ([]SkuMappingResponse, error) {
	mappings, err := s.mappings.FindByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		return nil, err
	}
	out := make([]SkuMappingResponse, len(mappings))
	for i := range mappings {
		out[i] = ToSkuMappingResponse(&mappings[i])
	}
	return out, nil
}

// Upsert maps an internal SKU, replacing its previous external SKU.
// An external SKU owned by another internal SKU is rejected.
func (s *SkuMappingService) Upsert(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, req UpsertSkuMappingRequest) (*SkuMappingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", validationMessage(err))
	}

	mapping, err := s.upsert(ctx, userID, marketplace, req.InternalSku, req.ExternalSku)
	if err != nil {
		return nil, err
	}
	resp := ToSkuMappingResponse(mapping)
	return &resp, nil
}

func (s *SkuMappingService) upsert(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku, externalSku string) (*integration.SkuMapping, error) {
	candidate, err := integration.NewSkuMapping(userID, marketplace, internalSku, externalSku)
	if err != nil {
		return nil, err
	}

	owner, err := s.mappings.FindByExternalSku(ctx, userID, marketplace, candidate.ExternalSku)
	if err != nil && !errors.Is(err, integration.ErrMappingNotFound) {
		return nil, err
	}
	if err := integration.EnsureExternalSkuAvailable(owner, candidate.InternalSku); err != nil {
		return nil, err
	}

	existing, err := s.mappings.FindByInternalSku(ctx, userID, marketplace, candidate.InternalSku)
	switch {
	case err == nil:
		if err := existing.Remap(candidate.ExternalSku); err != nil {
			return nil, err
		}
		candidate = existing
	case !errors.Is(err, integration.ErrMappingNotFound):
		return nil, err
	}

	if err := s.mappings.Upsert(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// Import applies a pasted block of internalSku<TAB>externalSku lines.
// Parse failures and rejected lines are reported, valid lines are saved.
func (s *SkuMappingService) Import(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, text string) (*ImportSkuMappingsResult, error) {
	parsed, err := csvimport.ParseSkuMappings(text)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT", err.Error())
	}

	failures := parsed.Failures
	imported := 0
	for _, line := range parsed.Lines {
		_, err := s.upsert(ctx, userID, marketplace, line.InternalSku, line.ExternalSku)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, integration.ErrDuplicateExternalSku):
			failures.AddDuplicateError(line.LineNumber, "external_sku", line.ExternalSku, true)
		case errors.Is(err, integration.ErrMappingInvalidInternalSku), errors.Is(err, integration.ErrMappingInvalidExternalSku):
			failures.Add(csvimport.NewRowError(line.LineNumber, "", csvimport.ErrCodeImportRejected, err.Error()))
		default:
			return nil, err
		}
	}

	total, err := s.mappings.CountByUserAndMarketplace(ctx, userID, marketplace)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SKU mappings imported",
		zap.String("user_id", userID.String()),
		zap.String("marketplace", marketplace.String()),
		zap.Int("imported", imported),
		zap.Int("failed", failures.TotalCount()),
	)
	return &ImportSkuMappingsResult{
		Imported:      imported,
		FailedCount:   failures.TotalCount(),
		Failures:      failures.Errors(),
		TotalMappings: total,
	}, nil
}

// Delete removes the mapping of an internal SKU
func (s *SkuMappingService) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode, internalSku string) error {
	return s.mappings.Delete(ctx, userID, marketplace, internalSku)
}

package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

// StoreCodeReader resolves the store short code stamped into every number.
type StoreCodeReader interface {
	CodeFor(ctx context.Context, id uuid.UUID) (string, error)
}

// Service issues formatted document numbers such as RMA-ACME-2026-0001.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Next(ctx context.Context, storeID uuid.UUID, kind enums.NumberKind) (string, error)
}

type service struct {
	repo   Repository
	stores StoreCodeReader
	now    func() time.Time
}

// NewService wires a numbering service with the required dependencies.
func NewService(repo Repository, stores StoreCodeReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("numbering repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store code reader required")
	}
	return &service{repo: repo, stores: stores, now: time.Now}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), stores: s.stores, now: s.now}
}

func (s *service) Next(ctx context.Context, storeID uuid.UUID, kind enums.NumberKind) (string, error) {
	if storeID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if !kind.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid number kind %q", kind))
	}

	code, err := s.stores.CodeFor(ctx, storeID)
	if err != nil {
		return "", err
	}

	year := s.now().UTC().Year()
	sequence, err := s.repo.NextSequence(ctx, storeID, kind, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d-%04d", kind.Prefix(), code, year, sequence), nil
}

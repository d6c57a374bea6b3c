// Package core wires the payout and RMA services against a database,
// for embedding by the surrounding platform. The binaries under cmd/
// wire only the slices they need; this is the full graph.
package core

import (
	"fmt"

	"github.com/vendaro/payout-core/internal/audit"
	"github.com/vendaro/payout-core/internal/ledger"
	"github.com/vendaro/payout-core/internal/numbering"
	"github.com/vendaro/payout-core/internal/policy"
	"github.com/vendaro/payout-core/internal/rma"
	"github.com/vendaro/payout-core/internal/shippingrules"
	"github.com/vendaro/payout-core/internal/stores"
	"github.com/vendaro/payout-core/pkg/config"
	"github.com/vendaro/payout-core/pkg/db"
	"github.com/vendaro/payout-core/pkg/logger"
	"github.com/vendaro/payout-core/pkg/metrics"
	"github.com/vendaro/payout-core/pkg/outbox"
)

// Params are the external collaborators the core cannot provide itself.
// Orders and Catalog are implemented by the platform's order and catalog
// services.
type Params struct {
	DB      *db.Client
	Logger  *logger.Logger
	Config  *config.Config
	Orders  rma.OrderReader
	Catalog rma.CatalogReader
	// Metrics may be nil; services then skip instrumentation.
	Metrics *metrics.LedgerMetrics
}

// Core exposes the assembled service surfaces.
type Core struct {
	Stores  stores.Repository
	Numbers numbering.Service
	Rules   shippingrules.Resolver
	Ledger  ledger.Service
	RMA     rma.Service
	Outbox  *outbox.Service
	Audit   *audit.Recorder
}

// New assembles the full payout core.
func New(params Params) (*Core, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}

	gdb := params.DB.DB()

	storeRepo := stores.NewRepository(gdb)
	numberSvc, err := numbering.NewService(numbering.NewRepository(gdb), storeRepo)
	if err != nil {
		return nil, fmt.Errorf("numbering: %w", err)
	}
	ruleResolver, err := shippingrules.NewResolver(shippingrules.NewRepository(gdb))
	if err != nil {
		return nil, fmt.Errorf("shipping rules: %w", err)
	}
	conditionPolicy, err := policy.New(params.Config.Policy)
	if err != nil {
		return nil, fmt.Errorf("refund policy: %w", err)
	}
	auditRecorder, err := audit.NewRecorder(gdb, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), params.Logger)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gdb), params.DB, outboxSvc, params.Metrics)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	rmaSvc, err := rma.NewService(
		rma.NewRepository(gdb),
		params.DB,
		outboxSvc,
		numberSvc,
		ruleResolver,
		conditionPolicy,
		ledgerSvc,
		params.Orders,
		params.Catalog,
		auditRecorder,
		params.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("rma: %w", err)
	}

	return &Core{
		Stores:  storeRepo,
		Numbers: numberSvc,
		Rules:   ruleResolver,
		Ledger:  ledgerSvc,
		RMA:     rmaSvc,
		Outbox:  outboxSvc,
		Audit:   auditRecorder,
	}, nil
}

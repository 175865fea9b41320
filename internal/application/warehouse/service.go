package warehouse

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/plant/backend/internal/domain/shared"
	"github.com/plant/backend/internal/domain/warehouse"
	"github.com/plant/backend/internal/infrastructure/telemetry"
)

// WarehouseService drives the allocation, delivery and limit-maintenance
// flows. Every mutating operation runs inside one transaction so a multi-bin
// lot placement is atomic and allocation reads see the call's own writes.
type WarehouseService struct {
	scope           TransactionScope
	bins            warehouse.BinRepository
	metrics         *telemetry.Metrics
	now             func() time.Time
	defaultCapacity int
	startLocation   string
}

// NewWarehouseService creates a WarehouseService. The plain repository is
// used for read-only queries; mutations go through the transaction scope.
func NewWarehouseService(scope TransactionScope, bins warehouse.BinRepository) *WarehouseService {
	return &WarehouseService{
		scope:           scope,
		bins:            bins,
		now:             time.Now,
		defaultCapacity: warehouse.DefaultBinCapacity,
		startLocation:   warehouse.DefaultStartLocation,
	}
}

// SetAllocationDefaults overrides the capacity applied when a lot omits its
// limit and the address scanned first when it omits its location.
func (s *WarehouseService) SetAllocationDefaults(capacity int, startLocation string) {
	if capacity >= 1 {
		s.defaultCapacity = capacity
	}
	if startLocation != "" {
		s.startLocation = startLocation
	}
}

// SetMetrics attaches the Prometheus collectors. Optional.
func (s *WarehouseService) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// SetClock overrides the time source. Intended for tests.
func (s *WarehouseService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateLot places an incoming lot into one or more bins, merging into
// existing READY bins before opening new ones. A non-positive quantity
// returns an empty result without touching the store.
func (s *WarehouseService) CreateLot(ctx context.Context, req CreateLotRequest) (CreateLotResult, error) {
	lot := warehouse.Lot{
		ProductName:   req.ProductName,
		ProductCode:   req.ProductCode,
		Quantity:      req.Quantity,
		StartLocation: req.Location,
		InDate:        req.InDate,
		Note:          req.Note,
		Category:      req.Category,
		ProductType:   req.ProductType,
		CapacityLimit: req.Limit,
	}
	if lot.CapacityLimit == 0 {
		lot.CapacityLimit = s.defaultCapacity
	}
	if lot.StartLocation == "" {
		lot.StartLocation = s.startLocation
	}
	if lot.ProductCode == "" {
		return CreateLotResult{}, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}

	var ids []uuid.UUID
	err := s.scope.Execute(ctx, func(bins warehouse.BinRepository) error {
		var aerr error
		ids, aerr = warehouse.NewAllocator(bins).Allocate(ctx, lot)
		return aerr
	})
	if err != nil {
		return CreateLotResult{}, err
	}

	if s.metrics != nil && len(ids) > 0 {
		s.metrics.LotsCreated.Inc()
		s.metrics.BinsAffected.Add(float64(len(ids)))
	}
	return CreateLotResult{CreatedIDs: ids, Count: len(ids)}, nil
}

// Deliver applies a stock-removal event to one bin and returns the
// post-update snapshot. The read-modify-write runs inside a transaction with
// the row locked, so concurrent deliveries against the same bin serialize.
// An already-DONE bin is returned unchanged without a write.
func (s *WarehouseService) Deliver(ctx context.Context, id uuid.UUID, amount int) (BinResponse, error) {
	var resp BinResponse
	var depleted bool
	err := s.scope.Execute(ctx, func(bins warehouse.BinRepository) error {
		bin, err := bins.FindByID(ctx, id)
		if err != nil {
			return err
		}
		wasDone := bin.Status == warehouse.StatusDone
		res := bin.Deliver(amount, s.now())
		if !wasDone {
			if err := bins.UpdateDelivery(ctx, id, res.Quantity, res.Status, res.OutDate); err != nil {
				return err
			}
			depleted = res.Status == warehouse.StatusDone
		}
		resp = ToBinResponse(bin)
		return nil
	})
	if err != nil {
		return BinResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.Deliveries.Inc()
		if depleted {
			s.metrics.BinsDepleted.Inc()
		}
	}
	return resp, nil
}

// GetByID returns a single bin snapshot.
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (BinResponse, error) {
	bin, err := s.bins.FindByID(ctx, id)
	if err != nil {
		return BinResponse{}, err
	}
	return ToBinResponse(bin), nil
}

// List returns one page of bins matching the query plus the total count.
func (s *WarehouseService) List(ctx context.Context, query ListQuery) ([]BinResponse, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	filter := query.Filter(s.now())

	items, err := s.bins.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bins.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToBinResponses(items), total, nil
}

// UpdateLimit sets one bin's capacity limit.
func (s *WarehouseService) UpdateLimit(ctx context.Context, id uuid.UUID, limit int) error {
	if limit < 1 {
		return shared.NewDomainError("INVALID_LIMIT", "Capacity limit must be at least 1")
	}
	return s.scope.Execute(ctx, func(bins warehouse.BinRepository) error {
		return bins.UpdateLimit(ctx, id, limit)
	})
}

// UpdateLimitsBatch applies limit changes independently and returns how many
// were applied. Entries with an unparsable id, a non-positive limit, or a
// missing bin are skipped without failing the batch; store failures abort it.
func (s *WarehouseService) UpdateLimitsBatch(ctx context.Context, entries []LimitEntry) (int, error) {
	updated := 0
	for _, e := range entries {
		if e.Limit < 1 {
			continue
		}
		id, err := uuid.Parse(e.ID)
		if err != nil {
			continue
		}
		err = s.scope.Execute(ctx, func(bins warehouse.BinRepository) error {
			return bins.UpdateLimit(ctx, id, e.Limit)
		})
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// Delete removes one bin row.
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(bins warehouse.BinRepository) error {
		return bins.Delete(ctx, id)
	})
}

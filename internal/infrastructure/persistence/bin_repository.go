package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/plant/backend/internal/domain/shared"
	"github.com/plant/backend/internal/domain/warehouse"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps driver-level conflict signals onto the domain taxonomy.
// Serialization failures and deadlocks (40001, 40P01) and unique violations
// on the single-READY-bin index (23505) all mean another writer won the
// race; callers may retry the whole transaction.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return shared.ErrConcurrencyConflict
		}
	}
	return err
}

// GormBinRepository implements warehouse.BinRepository using GORM.
//
// When forUpdate is set (repositories handed out by the transaction scope),
// every merge-target lookup and occupancy read takes SELECT ... FOR UPDATE
// row locks on the matching READY rows, serializing concurrent allocations
// and deliveries against the same (location, productCode).
type GormBinRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewGormBinRepository creates a repository for non-transactional reads.
func NewGormBinRepository(db *gorm.DB) *GormBinRepository {
	return &GormBinRepository{db: db}
}

// newLockedGormBinRepository creates a repository whose reads lock rows.
// Only the transaction scope should construct these.
func newLockedGormBinRepository(tx *gorm.DB) *GormBinRepository {
	return &GormBinRepository{db: tx, forUpdate: true}
}

func (r *GormBinRepository) locking(q *gorm.DB) *gorm.DB {
	if r.forUpdate {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// LockLocation takes a transaction-scoped advisory lock keyed on
// (location, productCode). A location with no READY row yet gives the FOR
// UPDATE reads nothing to lock, so two allocators could both decide to
// insert; the advisory lock serializes the whole merge-or-insert decision.
// It releases automatically at commit or rollback. No-op outside a
// transaction-scoped repository.
func (r *GormBinRepository) LockLocation(ctx context.Context, location, productCode string) error {
	if !r.forUpdate {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(? || '|' || ?))", location, productCode).Error
}

// FindByID finds a bin by its ID
func (r *GormBinRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.InventoryBin, error) {
	var bin warehouse.InventoryBin
	if err := r.locking(r.db.WithContext(ctx)).First(&bin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bin, nil
}

// OccupiedQuantity sums the quantity committed to READY bins at (location, productCode).
// The matching rows are read individually (and locked when in a transaction)
// rather than aggregated in SQL, so the lock covers exactly the rows the
// allocation decision depends on.
func (r *GormBinRepository) OccupiedQuantity(ctx context.Context, location, productCode string) (int, error) {
	var quantities []int
	q := r.locking(r.db.WithContext(ctx).
		Model(&warehouse.InventoryBin{}).
		Where("location = ? AND product_code = ? AND status = ?", location, productCode, warehouse.StatusReady))
	if err := q.Pluck("quantity", &quantities).Error; err != nil {
		return 0, err
	}
	sum := 0
	for _, qty := range quantities {
		sum += qty
	}
	return sum, nil
}

// FindMergeable returns the oldest READY bin at (location, productCode).
func (r *GormBinRepository) FindMergeable(ctx context.Context, location, productCode string) (*warehouse.InventoryBin, error) {
	var bin warehouse.InventoryBin
	err := r.locking(r.db.WithContext(ctx).
		Where("location = ? AND product_code = ? AND status = ?", location, productCode, warehouse.StatusReady).
		Order("created_at ASC")).
		First(&bin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bin, nil
}

// Create inserts a new bin row. A unique violation on the READY-bin index
// surfaces as shared.ErrConcurrencyConflict.
func (r *GormBinRepository) Create(ctx context.Context, bin *warehouse.InventoryBin) error {
	return translateError(r.db.WithContext(ctx).Create(bin).Error)
}

// AddQuantity increases a bin's quantity by delta
func (r *GormBinRepository) AddQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&warehouse.InventoryBin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateLimit sets a bin's capacity limit
func (r *GormBinRepository) UpdateLimit(ctx context.Context, id uuid.UUID, limit int) error {
	result := r.db.WithContext(ctx).
		Model(&warehouse.InventoryBin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"bin_limit":  limit,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateDelivery persists the post-delivery quantity/status/outDate triple
func (r *GormBinRepository) UpdateDelivery(ctx context.Context, id uuid.UUID, quantity int, status warehouse.BinStatus, outDate *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&warehouse.InventoryBin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"status":     status,
			"out_date":   outDate,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a bin row
func (r *GormBinRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&warehouse.InventoryBin{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns one page of bins matching the filter, newest inDate first
func (r *GormBinRepository) List(ctx context.Context, filter warehouse.ListFilter, page, pageSize int) ([]warehouse.InventoryBin, error) {
	var bins []warehouse.InventoryBin
	query := r.applyFilter(r.db.WithContext(ctx).Model(&warehouse.InventoryBin{}), filter).
		Order("in_date DESC, created_at DESC")

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	if err := query.Find(&bins).Error; err != nil {
		return nil, err
	}
	return bins, nil
}

// Count returns the total number of bins matching the filter
func (r *GormBinRepository) Count(ctx context.Context, filter warehouse.ListFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&warehouse.InventoryBin{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies the list filter conditions to the query
func (r *GormBinRepository) applyFilter(query *gorm.DB, filter warehouse.ListFilter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(product_name ILIKE ? OR product_code ILIKE ? OR location ILIKE ?)", like, like, like)
	}
	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("in_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("in_date <= ?", *filter.To)
	}
	return query
}

// Ensure GormBinRepository implements warehouse.BinRepository
var _ warehouse.BinRepository = (*GormBinRepository)(nil)

package billing

import (
	"context"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
)

// FirstBillID is issued by an empty store.
const FirstBillID = 10001

// Repository defines bill data access.
type Repository interface {
	// NextBillID advances the persisted high-water mark and returns it, so an
	// id is never handed out twice even after the bill carrying it is deleted.
	NextBillID(ctx context.Context) (string, error)
	// Insert fails with apperror.ErrConflict when the id is already taken.
	Insert(ctx context.Context, b *Bill) error
	Get(ctx context.Context, billID string) (*Bill, error)
	// ListByDay returns one trading day's bills, oldest first.
	ListByDay(ctx context.Context, day string) ([]*Bill, error)
	// ListBetween returns bills transacted inside r, newest first.
	ListBetween(ctx context.Context, r clock.Range) ([]*Bill, error)
	Delete(ctx context.Context, billID string) error
}

// Stores are the repositories one unit of work may touch.
type Stores struct {
	Catalog catalog.Repository
	Bills   Repository
	Ledger  ledger.Repository
}

// TxManager runs fn atomically: either every write made through the given
// Stores is kept or none is.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(Stores) error) error
}

package http

import (
	"context"
	"time"

	"github.com/Spok95/clinic-stock/internal/auth"
	"github.com/Spok95/clinic-stock/internal/domain/dashboard"
	"github.com/Spok95/clinic-stock/internal/domain/inventory"
	"github.com/Spok95/clinic-stock/internal/domain/materials"
	"github.com/Spok95/clinic-stock/internal/domain/requests"
	"github.com/Spok95/clinic-stock/internal/domain/users"
)

// Репозитории, которые нужны обработчикам. Реализации живут в internal/domain.

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	List(ctx context.Context) ([]users.User, error)
	Create(ctx context.Context, c users.Create, hashedPassword string) (*users.User, error)
	LogActivity(ctx context.Context, userID int64, action, details string) error
	Activity(ctx context.Context, userID int64, limit int) ([]users.Activity, error)
}

type MaterialStore interface {
	List(ctx context.Context, p materials.ListParams) ([]materials.Material, error)
	Get(ctx context.Context, id int64) (*materials.Material, error)
	Create(ctx context.Context, in materials.Input) (*materials.Material, error)
	Update(ctx context.Context, id int64, in materials.Input) (*materials.Material, error)
	Delete(ctx context.Context, id int64) error
	Batches(ctx context.Context, materialID int64) ([]materials.Batch, error)
}

type InventoryStore interface {
	Apply(ctx context.Context, actorID int64, in inventory.TransactionInput) (*inventory.Transaction, error)
	NarcoticLogs(ctx context.Context, skip, limit int) ([]inventory.NarcoticLog, error)
}

type RequestStore interface {
	Create(ctx context.Context, requesterID int64, items []requests.Item) (*requests.Request, error)
	List(ctx context.Context) ([]requests.Request, error)
	Approve(ctx context.Context, approverID, id int64) (*requests.Request, error)
}

type DashboardStore interface {
	Stats(ctx context.Context, now time.Time) (*dashboard.Stats, error)
}

type Tokens interface {
	Issue(p auth.Principal) (string, error)
	Verify(raw string) (auth.Principal, error)
}

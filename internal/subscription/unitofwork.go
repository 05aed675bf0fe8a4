// AngelaMos | 2026
// unitofwork.go

package subscription

import (
	"context"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/payment"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

// Repos are bound to one transaction.
type Repos struct {
	Users    user.Repository
	Promos   promo.Repository
	Payments payment.Repository
}

type UnitOfWork interface {
	Do(ctx context.Context, fn func(Repos) error) error
}

type sqlUnitOfWork struct {
	tx core.Transactor
}

func NewUnitOfWork(tx core.Transactor) UnitOfWork {
	return &sqlUnitOfWork{tx: tx}
}

func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(Repos) error) error {
	return u.tx.WithinTx(ctx, func(tx core.DBTX) error {
		return fn(Repos{
			Users:    user.NewRepository(tx),
			Promos:   promo.NewRepository(tx),
			Payments: payment.NewRepository(tx),
		})
	})
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-conversions/internal/entity"
)

type UnitOfWork struct {
	DB *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

func (u *UnitOfWork) Repositories() entity.Repositories {
	return repositoriesFor(u.DB)
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos entity.Repositories) error) (err error) {
	tx, err := u.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback falhou: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro no commit: %w", err)
	}
	return nil
}

func repositoriesFor(db DBTX) entity.Repositories {
	return entity.Repositories{
		Leads:         NewLeadRepository(db),
		Clients:       NewClientRepository(db),
		CheckoutLinks: NewCheckoutLinkRepository(db),
		Payments:      NewPaymentRepository(db),
		Activities:    NewActivityRepository(db),
	}
}

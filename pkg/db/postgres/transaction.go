package postgres

import (
	"context"
	"fmt"
	"time"

	"adhub/pkg/db"
	apperrors "adhub/pkg/errors"

	"gorm.io/gorm"
)

type txKey struct{}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(gdb *gorm.DB) db.TransactionManager {
	return &gormTransactionManager{db: gdb}
}

// ExecuteTransaction runs fn inside a database transaction. Nested calls join the
// outer transaction.
func (m *gormTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return apperrors.AsAppError(err)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// Conn returns the transaction carried by ctx, or fallback bound to ctx.
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// WithTimeout bounds ctx unless it already carries a transaction, whose lifetime
// belongs to the caller of ExecuteTransaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if InTransaction(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

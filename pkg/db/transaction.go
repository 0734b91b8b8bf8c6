// Package db holds the store-agnostic unit-of-work contract. Each store package
// provides a TransactionManager that hands fn a context carrying the open transaction;
// repositories of the same store pick it up from that context.
package db

import "context"

type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

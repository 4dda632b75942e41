package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import "context"

// TxManager provides unit-of-work semantics over the underlying store.
// WithinTx runs fn inside a single transaction; repository methods called with
// the context passed to fn participate in that transaction. fn returning an
// error rolls the transaction back, otherwise it is committed.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalCount int
	TotalPages int
}

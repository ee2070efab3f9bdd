// pkg/db/db.go
package db

import "context"

// Function types for transaction control so services can take transaction
// management as injected dependencies instead of depending on *sqlx.DB
// directly. This keeps services mockable in unit tests.

// BeginTxFunc begins a transaction on the given beginner.
type BeginTxFunc func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)

// CommitTxFunc commits a transaction.
type CommitTxFunc func(tx TxController) error

// RollbackTxFunc rolls back a transaction.
type RollbackTxFunc func(tx TxController)

package mongo

import (
	"agendo/pkg/errors"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrTransactionConflict marks a transaction aborted because another writer
// touched the same documents. Callers may retry.
var ErrTransactionConflict = stderrors.New("transaction aborted by concurrent write")

const (
	writeConflictCode         = 112
	transientTransactionLabel = "TransientTransactionError"
)

// TransactionFunc receives the session context when run against Mongo.
// Repositories pass it straight through as ctx so every read and write
// joins the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, transactionOptions(ctx))

	if err != nil {
		if errors.IsAppError(err) {
			return err
		}
		if IsTransientConflict(err) {
			return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// transactionOptions bounds the server side commit by the time left before
// the caller's deadline.
func transactionOptions(ctx context.Context) *options.TransactionOptions {
	opts := options.Transaction()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			opts.SetMaxCommitTime(&remaining)
		}
	}
	return opts
}

// IsTransientConflict reports write conflicts and errors labelled transient
// by the server.
func IsTransientConflict(err error) bool {
	var se mongo.ServerError
	if !stderrors.As(err, &se) {
		return false
	}
	return se.HasErrorLabel(transientTransactionLabel) || se.HasErrorCode(writeConflictCode)
}

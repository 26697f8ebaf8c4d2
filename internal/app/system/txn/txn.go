// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when a deployment cannot run multi-document
// transactions (standalone mongod, unsupported topology or operation).
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true, // IllegalOperation (older servers)
	263: true, // OperationNotSupportedInTransaction
}

// Message pairs for drivers and proxies that report the same condition
// without a server code.
var notSupportedPhrases = [][2]string{
	{"transaction", "replica set"},
	{"transaction", "not supported"},
	{"session", "not supported"},
}

// IsNotSupported reports whether err means the server cannot run a
// transaction, as opposed to the transaction failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range notSupportedPhrases {
		if strings.Contains(msg, p[0]) && strings.Contains(msg, p[1]) {
			return true
		}
	}
	return false
}

// Runner executes a unit of work inside a MongoDB transaction when the
// deployment allows it and directly otherwise.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

func New(client *mongo.Client, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, log: logger}
}

// WithTransaction runs fn with a session context. If the server reports that
// transactions are unsupported, fn is run once more without one; the writes
// inside fn are then not atomic.
func (r *Runner) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if r.client == nil {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.log.Warn("sessions not supported, running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.log.Warn("transactions not supported, running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/sharediary/internal/app/store/users"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the database is ready and
// before the HTTP handler is built: it applies timeout overrides and
// creates any configured seed users.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:    appCfg.TimeoutPing,
		Read:    appCfg.TimeoutRead,
		Write:   appCfg.TimeoutWrite,
		Cascade: appCfg.TimeoutCascade,
	})
	t := timeouts.Current()
	logger.Info("handler timeouts",
		zap.Duration("ping", t.Ping),
		zap.Duration("read", t.Read),
		zap.Duration("write", t.Write),
		zap.Duration("cascade", t.Cascade))

	return ensureSeedUsers(ctx, deps.MongoDatabase, appCfg.SeedUsers, logger)
}

// ensureSeedUsers creates each listed user unless one with that email
// already exists.
func ensureSeedUsers(ctx context.Context, db *mongo.Database, list string, logger *zap.Logger) error {
	addrs, err := parseSeedUsers(list)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return nil
	}

	users := userstore.New(db)
	created := 0
	for _, a := range addrs {
		_, err := users.Create(ctx, models.User{FullName: a.Name, Email: a.Address})
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			logger.Debug("seed user exists", zap.String("email", a.Address))
		case err != nil:
			logger.Error("seed user create failed", zap.String("email", a.Address), zap.Error(err))
			return err
		default:
			created++
			logger.Info("seed user created", zap.String("email", a.Address))
		}
	}
	logger.Info("seed users ensured", zap.Int("listed", len(addrs)), zap.Int("created", created))
	return nil
}

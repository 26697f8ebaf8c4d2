// internal/app/features/groups/handler.go
package groups

import (
	"context"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/registry"
	"github.com/dalemusser/sharediary/internal/app/system/auditlog"
	"github.com/dalemusser/sharediary/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service is the group registry as the HTTP layer sees it.
type Service interface {
	CreateGroup(ctx context.Context, actor primitive.ObjectID, name, password string) (primitive.ObjectID, error)
	Invite(ctx context.Context, actor, groupID primitive.ObjectID, emails []string) (int, error)
	ListInvitationsFor(ctx context.Context, userID primitive.ObjectID) ([]registry.Invitation, error)
	AcceptInvite(ctx context.Context, actor, groupID primitive.ObjectID) error
	RejectInvite(ctx context.Context, actor, groupID primitive.ObjectID) error
	ListMyGroups(ctx context.Context, actor primitive.ObjectID) ([]registry.GroupView, error)
	ListMembers(ctx context.Context, groupID primitive.ObjectID) ([]registry.Person, error)
	VerifyPassword(ctx context.Context, groupID primitive.ObjectID, candidate string) error
	RemoveMember(ctx context.Context, actor, groupID, target primitive.ObjectID) error
	UpdatePassword(ctx context.Context, actor, groupID primitive.ObjectID, newPassword string) error
	DeleteGroup(ctx context.Context, actor, groupID primitive.ObjectID) (int64, error)
	LeaveGroup(ctx context.Context, actor, groupID primitive.ObjectID) error
}

// Handler is the shared dependency container for the groups feature.
type Handler struct {
	Svc      Service
	Limiter  *ratelimit.PasswordLimiter
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler is called from bootstrap.BuildHandler. A nil limiter turns
// password throttling off and a nil audit logger drops audit events.
func NewHandler(svc Service, limiter *ratelimit.PasswordLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Limiter:  limiter,
		AuditLog: audit,
		ErrLog:   uierrors.NewErrorLogger(logger),
		Log:      logger,
	}
}

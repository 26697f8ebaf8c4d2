// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/sharediary/internal/app/store/audit"
	"github.com/dalemusser/sharediary/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for audit events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ParseMode validates an audit_log config value. Empty means ModeAll.
func ParseMode(s string) (string, error) {
	switch s {
	case "":
		return ModeAll, nil
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return s, nil
	}
	return "", fmt.Errorf("audit log mode must be one of all, db, log, off; got %q", s)
}

// Recorder persists events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records membership events to MongoDB and/or zap.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	mode   string
}

// New creates a new audit Logger. A nil store downgrades db modes to zap only.
func New(store Recorder, zapLog *zap.Logger, mode string) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	if mode == "" {
		mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", event.EventType),
		zap.String("group_id", event.GroupID.Hex()),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the configured mode.
// A nil Logger is a no-op so handlers and tests can run without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	if l.mode == ModeAll || l.mode == ModeLog || l.store == nil {
		l.logToZap(event)
	}
	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, eventType string, groupID, actorID primitive.ObjectID) audit.Event {
	return audit.Event{
		EventType: eventType,
		GroupID:   groupID,
		ActorID:   &actorID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// GroupCreated logs a new group. hasPassword records whether it is gated.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID, hasPassword bool) {
	e := fromRequest(r, audit.EventGroupCreated, groupID, actorID)
	e.Details = map[string]string{"has_password": strconv.FormatBool(hasPassword)}
	l.Log(ctx, e)
}

// MembersInvited logs an invite call; added is how many users were newly invited.
func (l *Logger) MembersInvited(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID, requested, added int) {
	e := fromRequest(r, audit.EventMembersInvited, groupID, actorID)
	e.Details = map[string]string{
		"requested": strconv.Itoa(requested),
		"added":     strconv.Itoa(added),
	}
	l.Log(ctx, e)
}

// InviteAccepted logs the actor joining a group.
func (l *Logger) InviteAccepted(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.EventInviteAccepted, groupID, actorID))
}

// InviteRejected logs the actor declining an invitation.
func (l *Logger) InviteRejected(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.EventInviteRejected, groupID, actorID))
}

// MemberRemoved logs the leader removing target.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, groupID, actorID, targetID primitive.ObjectID) {
	e := fromRequest(r, audit.EventMemberRemoved, groupID, actorID)
	e.TargetID = &targetID
	l.Log(ctx, e)
}

// MemberLeft logs the actor leaving a group.
func (l *Logger) MemberLeft(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.EventMemberLeft, groupID, actorID))
}

// PasswordChanged logs the leader replacing the group password.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.EventPasswordChanged, groupID, actorID))
}

// PasswordCheckFailed logs a rejected group password. The caller may be
// anonymous, so there is no actor.
func (l *Logger) PasswordCheckFailed(ctx context.Context, r *http.Request, groupID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		EventType:     audit.EventPasswordCheckFailed,
		GroupID:       groupID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// GroupDeleted logs a group removal and how many diary entries went with it.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, groupID, actorID primitive.ObjectID, entries int64) {
	e := fromRequest(r, audit.EventGroupDeleted, groupID, actorID)
	e.Details = map[string]string{"deleted_entries": strconv.FormatInt(entries, 10)}
	l.Log(ctx, e)
}

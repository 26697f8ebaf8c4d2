// Package registry owns the group membership lifecycle: creating groups,
// issuing and answering invitations, removing members, the optional
// password gate and deleting a group with its diary entries.
//
// Every mutation reads the current group, applies a pure transition to a
// copy and writes it back with a version check. A lost race re-reads and
// re-applies the transition.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/sharediary/internal/app/store/groups"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GroupStore persists groups. Save must fail with
// groupstore.ErrVersionConflict when the stored version differs from the
// one passed in, and with mongo.ErrNoDocuments when the group is gone.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	Create(ctx context.Context, g models.Group) (models.Group, error)
	Save(ctx context.Context, g models.Group) (models.Group, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	ListByInvitee(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
}

// UserDirectory looks up users by email and by id.
type UserDirectory interface {
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)
	Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

// Hasher is a one-way password hash.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// DiaryCleaner removes the diary entries owned by a group.
type DiaryCleaner interface {
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// Transactor runs fn as one atomic unit where the database allows it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// Observer is told the outcome of every operation.
type Observer interface {
	Observe(op string, err error)
}

// Deps are the collaborators a Registry needs. Observer and Log are optional.
type Deps struct {
	Groups   GroupStore
	Users    UserDirectory
	Hasher   Hasher
	Diaries  DiaryCleaner
	Tx       Transactor
	Observer Observer
	Log      *zap.Logger
}

// Config tunes registry behavior.
type Config struct {
	InvitePolicy grouppolicy.InvitePolicy
	// SaveRetries bounds how many times a mutation is attempted when the
	// group keeps changing underneath it. Zero selects DefaultSaveRetries.
	SaveRetries int
}

const DefaultSaveRetries = 5

type Registry struct {
	groups  GroupStore
	users   UserDirectory
	hasher  Hasher
	diaries DiaryCleaner
	tx      Transactor
	obs     Observer
	log     *zap.Logger

	invitePolicy grouppolicy.InvitePolicy
	saveRetries  int
}

func New(d Deps, cfg Config) *Registry {
	r := &Registry{
		groups:       d.Groups,
		users:        d.Users,
		hasher:       d.Hasher,
		diaries:      d.Diaries,
		tx:           d.Tx,
		obs:          d.Observer,
		log:          d.Log,
		invitePolicy: cfg.InvitePolicy,
		saveRetries:  cfg.SaveRetries,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.tx == nil {
		r.tx = direct{}
	}
	if r.invitePolicy == "" {
		r.invitePolicy = grouppolicy.InviteOpen
	}
	if r.saveRetries <= 0 {
		r.saveRetries = DefaultSaveRetries
	}
	return r
}

// Invitation is a pending invitation as seen by the invitee.
type Invitation struct {
	GroupID     primitive.ObjectID `json:"groupId"`
	GroupName   string             `json:"groupName"`
	InviterName string             `json:"inviterName"`
}

// Person is a resolved user reference.
type Person struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// GroupView is a group as listed to one of its members.
type GroupView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Leader      Person             `json:"leader"`
	Members     []Person           `json:"members"`
	HasPassword bool               `json:"hasPassword"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// direct runs work without a transaction.
type direct struct{}

func (direct) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

var (
	errGroupNotFound = apperr.New(apperr.NotFound, "group not found")
	errConflict      = errors.New("group kept changing, gave up")
)

// transition computes the next snapshot from g, which the callee owns.
// It returns changed=false when there is nothing to write.
type transition func(g models.Group) (next models.Group, changed bool, err error)

// mutate loads the group, applies fn and saves the result with a version
// check, retrying on conflict.
func (r *Registry) mutate(ctx context.Context, id primitive.ObjectID, fn transition) (models.Group, error) {
	for attempt := 1; attempt <= r.saveRetries; attempt++ {
		cur, err := r.load(ctx, id)
		if err != nil {
			return models.Group{}, err
		}
		next, changed, err := fn(cur.Clone())
		if err != nil {
			return models.Group{}, err
		}
		if !changed {
			return cur, nil
		}
		saved, err := r.groups.Save(ctx, next)
		switch {
		case err == nil:
			return saved, nil
		case errors.Is(err, groupstore.ErrVersionConflict):
			r.log.Debug("group save conflict, retrying",
				zap.String("group_id", id.Hex()), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, mongo.ErrNoDocuments):
			return models.Group{}, errGroupNotFound
		default:
			return models.Group{}, apperr.Wrap(err, apperr.Internal, "save group")
		}
	}
	return models.Group{}, apperr.Wrap(errConflict, apperr.Internal, "save group")
}

func (r *Registry) load(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	g, err := r.groups.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Group{}, errGroupNotFound
	}
	if err != nil {
		return models.Group{}, apperr.Wrap(err, apperr.Internal, "load group")
	}
	return g, nil
}

func (r *Registry) observe(op string, err error) {
	if r.obs != nil {
		r.obs.Observe(op, err)
	}
}

func toPerson(u models.User) Person {
	return Person{ID: u.ID, Name: u.FullName, Email: u.Email}
}

package registry

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	groupstore "github.com/dalemusser/sharediary/internal/app/store/groups"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memGroups is an in-memory GroupStore with the same version semantics as
// the Mongo store.
type memGroups struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]models.Group
	saves  int

	// conflicts makes the next n saves lose to a simulated concurrent writer.
	conflicts int
	// interfere runs against the stored copy before a simulated conflict.
	interfere func(*models.Group)
	failWith  error
}

func newMemGroups() *memGroups {
	return &memGroups{groups: map[primitive.ObjectID]models.Group{}}
}

func (m *memGroups) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Group{}, m.failWith
	}
	g, ok := m.groups[id]
	if !ok {
		return models.Group{}, mongo.ErrNoDocuments
	}
	return g.Clone(), nil
}

func (m *memGroups) Create(_ context.Context, g models.Group) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = primitive.NewObjectID()
	g.Version = 1
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	m.groups[g.ID] = g.Clone()
	return g, nil
}

func (m *memGroups) Save(_ context.Context, g models.Group) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.groups[g.ID]
	if !ok {
		return models.Group{}, mongo.ErrNoDocuments
	}
	if m.conflicts > 0 {
		m.conflicts--
		if m.interfere != nil {
			m.interfere(&cur)
		}
		cur.Version++
		m.groups[g.ID] = cur
		return models.Group{}, groupstore.ErrVersionConflict
	}
	if cur.Version != g.Version {
		return models.Group{}, groupstore.ErrVersionConflict
	}
	g.Version++
	g.UpdatedAt = time.Now().UTC()
	m.groups[g.ID] = g.Clone()
	m.saves++
	return g, nil
}

func (m *memGroups) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return 0, nil
	}
	delete(m.groups, id)
	return 1, nil
}

func (m *memGroups) ListByMember(_ context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	return m.list(func(g models.Group) bool { return slices.Contains(g.Members, userID) }), nil
}

func (m *memGroups) ListByInvitee(_ context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	return m.list(func(g models.Group) bool { return slices.Contains(g.Invitations, userID) }), nil
}

func (m *memGroups) list(keep func(models.Group) bool) []models.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Group
	for _, g := range m.groups {
		if keep(g) {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memGroups) get(id primitive.ObjectID) (models.Group, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	return g.Clone(), ok
}

type memUsers struct {
	byID map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) add(name, email string) primitive.ObjectID {
	u := models.User{ID: primitive.NewObjectID(), FullName: name, Email: email}
	m.byID[u.ID] = u
	return u.ID
}

func (m *memUsers) FindByEmails(_ context.Context, emails []string) ([]models.User, error) {
	var out []models.User
	for _, e := range emails {
		for _, u := range m.byID {
			if strings.EqualFold(u.Email, e) {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (m *memUsers) Resolve(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// prefixHasher is reversible on purpose so tests can see what was stored.
type prefixHasher struct{}

func (prefixHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (prefixHasher) Verify(plain, hash string) (bool, error) {
	return hash == "hashed:"+plain, nil
}

type memDiaries struct {
	entries map[primitive.ObjectID]int64
	failErr error
}

func (m *memDiaries) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	if m.failErr != nil {
		return 0, m.failErr
	}
	n := m.entries[groupID]
	delete(m.entries, groupID)
	return n, nil
}

type countingTx struct{ calls int }

func (c *countingTx) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	c.calls++
	return fn(ctx)
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (o *recordingObserver) Observe(op string, err error) {
	o.ops = append(o.ops, op)
	o.errs = append(o.errs, err)
}

type fixture struct {
	reg     *Registry
	groups  *memGroups
	users   *memUsers
	diaries *memDiaries
	tx      *countingTx
	obs     *recordingObserver
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		groups:  newMemGroups(),
		users:   newMemUsers(),
		diaries: &memDiaries{entries: map[primitive.ObjectID]int64{}},
		tx:      &countingTx{},
		obs:     &recordingObserver{},
	}
	f.reg = New(Deps{
		Groups:   f.groups,
		Users:    f.users,
		Hasher:   prefixHasher{},
		Diaries:  f.diaries,
		Tx:       f.tx,
		Observer: f.obs,
	}, cfg)
	return f
}

var errBoom = errors.New("boom")

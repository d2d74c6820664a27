package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory account repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	seq      int
	findErr  error // if set, FindByEmail returns this error
	updates  []ports.AccountUpdate
	findByID int // number of FindByID calls
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Experience = append([]domain.Experience(nil), a.Experience...)
	c.Education = append([]domain.Education(nil), a.Education...)
	return &c
}

func (r *stubAccountRepo) EnsureIndexes(context.Context) error { return nil }

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findByID++
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.withCreator(a), nil
}

func (r *stubAccountRepo) withCreator(a *domain.Account) *domain.Account {
	c := cloneAccount(a)
	if creator, ok := r.byID[a.CreatedBy]; ok {
		summary := creator.Summary()
		c.Creator = &summary
	}
	return c
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.seq++
	c := cloneAccount(a)
	c.ID = fmt.Sprintf("acc-%03d", r.seq)
	c.CreatedAt = c.CreatedAt.Add(time.Duration(r.seq) * time.Second)
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, u ports.AccountUpdate, now time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	r.updates = append(r.updates, u)
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.Bio != nil {
		a.Bio = *u.Bio
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.MobileNumber != nil {
		a.MobileNumber = *u.MobileNumber
	}
	if u.PermanentAddress != nil {
		a.PermanentAddress = *u.PermanentAddress
	}
	if u.CurrentPosition != nil {
		a.CurrentPosition = *u.CurrentPosition
	}
	if u.Experience != nil {
		a.Experience = *u.Experience
	}
	if u.Education != nil {
		a.Education = *u.Education
	}
	if u.ProfileImage != nil {
		a.ProfileImage = *u.ProfileImage
	}
	a.UpdatedAt = now
	return r.withCreator(a), nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubAccountRepo) List(context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, r.withCreator(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// put stores a fully formed account directly, bypassing the service.
func (r *stubAccountRepo) put(a *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = cloneAccount(a)
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

// plainHasher prefixes instead of hashing so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hash, password string) bool  { return hash == "hashed:"+password }

type stubSigner struct {
	parseErr error
	signed   []string
}

func (s *stubSigner) Sign(accountID string, role domain.Role) (string, error) {
	token := "token:" + accountID + ":" + string(role)
	s.signed = append(s.signed, token)
	return token, nil
}

func (s *stubSigner) Parse(token string) (ports.TokenClaims, error) {
	if s.parseErr != nil {
		return ports.TokenClaims{}, s.parseErr
	}
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return ports.TokenClaims{}, domain.ErrTokenInvalid
	}
	return ports.TokenClaims{AccountID: parts[1], Role: domain.Role(parts[2])}, nil
}

type stubCache struct {
	entries     map[string]ports.CachedIdentity
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]ports.CachedIdentity)}
}

func (c *stubCache) Get(_ context.Context, id string) (*ports.CachedIdentity, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &e, true
}

func (c *stubCache) Set(_ context.Context, id string, e ports.CachedIdentity) {
	c.entries[id] = e
}

func (c *stubCache) Invalidate(_ context.Context, id string) {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

type stubFileStore struct {
	storeErr error
	stored   map[string]string // ref -> content
	seq      int
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{stored: make(map[string]string)}
}

func (f *stubFileStore) Store(_ context.Context, accountID string, body io.Reader, _ int64, _ string, filename string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.seq++
	ref := fmt.Sprintf("https://files.test/profiles/%s/%d-%s", accountID, f.seq, filename)
	f.stored[ref] = string(b)
	return ref, nil
}

func (f *stubFileStore) Delete(_ context.Context, ref string) error {
	if _, ok := f.stored[ref]; !ok {
		return errors.New("no such object")
	}
	delete(f.stored, ref)
	return nil
}

type stubCleanup struct {
	refs []string
}

func (q *stubCleanup) Enqueue(_ string, ref string) {
	q.refs = append(q.refs, ref)
}

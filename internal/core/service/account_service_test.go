package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

type accountFixture struct {
	repo    *stubAccountRepo
	cache   *stubCache
	files   *stubFileStore
	cleanup *stubCleanup
	svc     *AccountService
	root    domain.Actor
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	f := &accountFixture{
		repo:    newStubAccountRepo(),
		cache:   newStubCache(),
		files:   newStubFileStore(),
		cleanup: &stubCleanup{},
	}
	f.svc = NewAccountService(f.repo, plainHasher{}, f.cache, f.files, f.cleanup, zerolog.Nop())

	root, err := f.svc.RegisterSuperAdmin(context.Background(), ports.RegisterInput{
		Name: "root", Email: "root@x.com", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	f.root = domain.Actor{ID: root.ID, Role: root.Role}
	return f
}

func (f *accountFixture) register(t *testing.T, name string, role string) *domain.Account {
	t.Helper()
	a, err := f.svc.RegisterUser(context.Background(), f.root, ports.RegisterInput{
		Name: name, Email: name + "@x.com", Password: "pw123456", Role: role,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", name, err)
	}
	return a
}

func actorOf(a *domain.Account) domain.Actor {
	return domain.Actor{ID: a.ID, Role: a.Role}
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegisterSuperAdmin(t *testing.T) {
	f := newAccountFixture(t)

	root, err := f.svc.Get(context.Background(), f.root, f.root.ID)
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	if root.Role != domain.RoleSuperAdmin || !root.IsActive {
		t.Fatalf("unexpected root account: %+v", root)
	}
	if root.CreatedBy != "" || root.Creator != nil {
		t.Fatalf("bootstrap account must have no creator, got %q", root.CreatedBy)
	}
	if root.PasswordHash == "pw123456" {
		t.Fatal("password stored in clear")
	}
}

func TestRegisterSuperAdmin_Validation(t *testing.T) {
	f := newAccountFixture(t)
	cases := []ports.RegisterInput{
		{Email: "a@x.com", Password: "pw"},
		{Name: "a", Password: "pw"},
		{Name: "a", Email: "a@x.com"},
		{Name: "a", Email: "not-an-email", Password: "pw"},
		{Name: "a", Email: "b@x.com", Password: "pw", Bio: strings.Repeat("x", domain.MaxBioLength+1)},
	}
	for i, in := range cases {
		if _, err := f.svc.RegisterSuperAdmin(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestRegisterUser_DefaultsAndProvenance(t *testing.T) {
	f := newAccountFixture(t)

	a := f.register(t, "alice", "")
	if a.Role != domain.RoleUser {
		t.Fatalf("expected default role USER, got %s", a.Role)
	}
	if a.CreatedBy != f.root.ID {
		t.Fatalf("expected createdBy %s, got %s", f.root.ID, a.CreatedBy)
	}

	got, err := f.svc.Get(context.Background(), f.root, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Creator == nil || got.Creator.Email != "root@x.com" {
		t.Fatalf("expected resolved creator, got %+v", got.Creator)
	}

	admin := f.register(t, "bob", "ADMIN")
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", admin.Role)
	}
}

func TestRegisterUser_Rejections(t *testing.T) {
	f := newAccountFixture(t)
	admin := f.register(t, "adm", "ADMIN")
	in := ports.RegisterInput{Name: "x", Email: "x@x.com", Password: "pw"}

	if _, err := f.svc.RegisterUser(context.Background(), actorOf(admin), in); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("admin actor: expected ErrForbidden, got %v", err)
	}

	in.Role = "SUPER_ADMIN"
	if _, err := f.svc.RegisterUser(context.Background(), f.root, in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("super admin role: expected ErrValidation, got %v", err)
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	f := newAccountFixture(t)
	f.register(t, "carol", "")

	_, err := f.svc.RegisterUser(context.Background(), f.root, ports.RegisterInput{
		Name: "Carol Two", Email: "CAROL@X.com", Password: "pw",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Role changes
// ---------------------------------------------------------------------------

func TestPromoteDemote_RoundTrip(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "dan", "")

	promoted, err := f.svc.PromoteToAdmin(context.Background(), f.root, u.ID)
	if err != nil || promoted.Role != domain.RoleAdmin {
		t.Fatalf("promote: %v %+v", err, promoted)
	}
	if _, err := f.svc.PromoteToAdmin(context.Background(), f.root, u.ID); !errors.Is(err, domain.ErrNoOp) {
		t.Fatalf("second promote: expected ErrNoOp, got %v", err)
	}

	demoted, err := f.svc.DemoteToUser(context.Background(), f.root, u.ID)
	if err != nil || demoted.Role != domain.RoleUser {
		t.Fatalf("demote: %v %+v", err, demoted)
	}
	if _, err := f.svc.DemoteToUser(context.Background(), f.root, u.ID); !errors.Is(err, domain.ErrNoOp) {
		t.Fatalf("second demote: expected ErrNoOp, got %v", err)
	}

	if len(f.cache.invalidated) < 2 {
		t.Fatalf("expected identity cache invalidation on each role change, got %v", f.cache.invalidated)
	}
}

func TestRoleChange_Rejections(t *testing.T) {
	f := newAccountFixture(t)
	admin := f.register(t, "eve", "ADMIN")
	user := f.register(t, "fay", "")

	if _, err := f.svc.PromoteToAdmin(context.Background(), actorOf(admin), user.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("admin promoting: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.DemoteToUser(context.Background(), f.root, f.root.ID); !errors.Is(err, domain.ErrImmutable) {
		t.Errorf("demote super admin: expected ErrImmutable, got %v", err)
	}
	if _, err := f.svc.PromoteToAdmin(context.Background(), f.root, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("missing target: expected ErrAccountNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Activation
// ---------------------------------------------------------------------------

func TestDeactivate_IdempotentAndActivateGuardFree(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "gus", "")

	for i := 0; i < 2; i++ {
		got, err := f.svc.Deactivate(context.Background(), f.root, u.ID)
		if err != nil {
			t.Fatalf("deactivate #%d: %v", i+1, err)
		}
		if got.IsActive {
			t.Fatalf("deactivate #%d left account active", i+1)
		}
	}
	for i := 0; i < 2; i++ {
		got, err := f.svc.Activate(context.Background(), f.root, u.ID)
		if err != nil {
			t.Fatalf("activate #%d: %v", i+1, err)
		}
		if !got.IsActive {
			t.Fatalf("activate #%d left account inactive", i+1)
		}
	}
}

func TestDeactivate_Protections(t *testing.T) {
	f := newAccountFixture(t)
	admin := f.register(t, "hal", "ADMIN")
	user := f.register(t, "ivy", "")

	if _, err := f.svc.Deactivate(context.Background(), actorOf(admin), f.root.ID); !errors.Is(err, domain.ErrImmutable) {
		t.Errorf("admin deactivating super admin: expected ErrImmutable, got %v", err)
	}
	if _, err := f.svc.Deactivate(context.Background(), f.root, f.root.ID); !errors.Is(err, domain.ErrImmutable) {
		t.Errorf("super admin deactivating self: expected ErrImmutable, got %v", err)
	}
	if _, err := f.svc.Deactivate(context.Background(), actorOf(admin), admin.ID); !errors.Is(err, domain.ErrSelfTarget) {
		t.Errorf("admin deactivating self: expected ErrSelfTarget, got %v", err)
	}
	if _, err := f.svc.Deactivate(context.Background(), actorOf(user), admin.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user deactivating: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Activate(context.Background(), actorOf(user), user.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user activating: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Activate(context.Background(), f.root, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("activate missing: expected ErrAccountNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	f := newAccountFixture(t)
	admin := f.register(t, "jay", "ADMIN")
	user := f.register(t, "kim", "")

	if _, err := f.svc.UpdateProfileImage(context.Background(), actorOf(user), ports.ImageUpload{
		Body: strings.NewReader("png"), Size: 3, ContentType: "image/png", Filename: "me.png",
	}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := f.svc.Delete(context.Background(), actorOf(admin), admin.ID); !errors.Is(err, domain.ErrSelfTarget) {
		t.Fatalf("self delete: expected ErrSelfTarget, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.root, f.root.ID); !errors.Is(err, domain.ErrImmutable) {
		t.Fatalf("super admin delete: expected ErrImmutable, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), actorOf(admin), user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), f.root, user.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected deleted account to be gone, got %v", err)
	}
	if len(f.cleanup.refs) != 1 {
		t.Fatalf("expected profile image queued for cleanup, got %v", f.cleanup.refs)
	}
	if err := f.svc.Delete(context.Background(), actorOf(admin), user.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("second delete: expected ErrAccountNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func TestListAndGet(t *testing.T) {
	f := newAccountFixture(t)
	first := f.register(t, "lea", "")
	second := f.register(t, "max", "")

	list, err := f.svc.List(context.Background(), f.root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %d accounts", len(list))
	}

	if _, err := f.svc.List(context.Background(), actorOf(first)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("user list: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), actorOf(first), first.ID); err != nil {
		t.Fatalf("self get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), actorOf(first), second.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("user reading other: expected ErrForbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestUpdateOwnProfile_Sparse(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "ned", "")

	full := ports.ProfilePatch{
		LastName:         strPtr("Stark"),
		PermanentAddress: strPtr("Winterfell"),
		CurrentPosition:  strPtr("Lord"),
		Experience:       json.RawMessage(`[{"company":"North","position":"Warden","startDate":"2010-01-01"}]`),
	}
	if _, err := f.svc.UpdateOwnProfile(context.Background(), actorOf(u), full); err != nil {
		t.Fatalf("initial update: %v", err)
	}

	got, err := f.svc.UpdateOwnProfile(context.Background(), actorOf(u), ports.ProfilePatch{MobileNumber: strPtr("555")})
	if err != nil {
		t.Fatalf("sparse update: %v", err)
	}
	if got.MobileNumber != "555" {
		t.Fatalf("mobile not updated: %q", got.MobileNumber)
	}
	if got.Name != "ned" || got.LastName != "Stark" || got.PermanentAddress != "Winterfell" || got.CurrentPosition != "Lord" {
		t.Fatalf("unrelated fields changed: %+v", got)
	}
	if len(got.Experience) != 1 || got.Experience[0].Company != "North" {
		t.Fatalf("experience changed: %+v", got.Experience)
	}

	last := f.repo.updates[len(f.repo.updates)-1]
	if last.Name != nil || last.Experience != nil || last.Role != nil || last.IsActive != nil {
		t.Fatalf("sparse patch touched absent fields: %+v", last)
	}
}

func TestUpdateOwnProfile_ListFields(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "oli", "")

	asString := ports.ProfilePatch{Education: json.RawMessage(`"[{\"institution\":\"MIT\",\"degree\":\"BSc\"}]"`)}
	got, err := f.svc.UpdateOwnProfile(context.Background(), actorOf(u), asString)
	if err != nil {
		t.Fatalf("string-encoded list: %v", err)
	}
	if len(got.Education) != 1 || got.Education[0].Institution != "MIT" {
		t.Fatalf("unexpected education: %+v", got.Education)
	}

	bad := []ports.ProfilePatch{
		{Experience: json.RawMessage(`{"company":"X","position":"Y"}`)},
		{Experience: json.RawMessage(`"not json"`)},
		{Education: json.RawMessage(`42`)},
		{Experience: json.RawMessage(`null`)},
		{Education: json.RawMessage(` null `)},
		{Experience: json.RawMessage(`[{"company":"X"}]`)},
		{Bio: strPtr(strings.Repeat("b", domain.MaxBioLength+1))},
		{Name: strPtr("   ")},
	}
	for i, p := range bad {
		if _, err := f.svc.UpdateOwnProfile(context.Background(), actorOf(u), p); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}

	cleared, err := f.svc.UpdateOwnProfile(context.Background(), actorOf(u), ports.ProfilePatch{Education: json.RawMessage(`[]`)})
	if err != nil || len(cleared.Education) != 0 {
		t.Fatalf("empty list should clear education: %v %+v", err, cleared)
	}
}

func TestUpdateOwnProfile_AccountVanished(t *testing.T) {
	f := newAccountFixture(t)
	ghost := domain.Actor{ID: "ghost", Role: domain.RoleUser}

	if _, err := f.svc.UpdateOwnProfile(context.Background(), ghost, ports.ProfilePatch{Bio: strPtr("hi")}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateProfileImage_ReplacesAndQueuesOld(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "pam", "")
	upload := func(name string) *domain.Account {
		got, err := f.svc.UpdateProfileImage(context.Background(), actorOf(u), ports.ImageUpload{
			Body: strings.NewReader(name), Size: int64(len(name)), ContentType: "image/jpeg", Filename: name,
		})
		if err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
		return got
	}

	first := upload("a.jpg")
	if first.ProfileImage == "" {
		t.Fatal("expected profile image reference")
	}
	if len(f.cleanup.refs) != 0 {
		t.Fatalf("nothing to clean up on first upload, got %v", f.cleanup.refs)
	}

	second := upload("b.jpg")
	if second.ProfileImage == first.ProfileImage {
		t.Fatal("expected a new reference")
	}
	if len(f.cleanup.refs) != 1 || f.cleanup.refs[0] != first.ProfileImage {
		t.Fatalf("expected old image queued, got %v", f.cleanup.refs)
	}
}

func TestUpdateProfileImage_Rejections(t *testing.T) {
	f := newAccountFixture(t)
	u := f.register(t, "quinn", "")

	_, err := f.svc.UpdateProfileImage(context.Background(), actorOf(u), ports.ImageUpload{
		Body: strings.NewReader("%PDF"), Size: 4, ContentType: "application/pdf", Filename: "cv.pdf",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-image, got %v", err)
	}

	f.files.storeErr = errors.New("bucket unavailable")
	_, err = f.svc.UpdateProfileImage(context.Background(), actorOf(u), ports.ImageUpload{
		Body: strings.NewReader("x"), Size: 1, ContentType: "image/png", Filename: "x.png",
	})
	if err == nil || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// End-to-end scenario
// ---------------------------------------------------------------------------

func TestScenario_PromotedThenDeactivatedCannotLogin(t *testing.T) {
	f := newAccountFixture(t)
	auth := NewAuthService(f.repo, plainHasher{}, &stubSigner{}, f.cache, zerolog.Nop())

	a, err := f.svc.RegisterUser(context.Background(), f.root, ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Login(context.Background(), "a@x.com", "pw123456"); err != nil {
		t.Fatalf("login before deactivation: %v", err)
	}

	promoted, err := f.svc.PromoteToAdmin(context.Background(), f.root, a.ID)
	if err != nil || promoted.Role != domain.RoleAdmin {
		t.Fatalf("promote: %v", err)
	}
	if _, err := f.svc.Deactivate(context.Background(), f.root, a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := auth.Login(context.Background(), "a@x.com", "pw123456"); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
	if _, err := auth.VerifyToken(context.Background(), "token:"+a.ID+":ADMIN"); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("outstanding token must stop working, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubProfileRepo struct {
	mu      sync.Mutex
	byUser  map[string]*domain.Profile
	finds   int
	findErr error
	clock   time.Time
	// onFind runs after a successful lookup, outside the lock.
	onFind func(userID string)
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		byUser: make(map[string]*domain.Profile),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	clone := *p
	clone.Skills = append([]string(nil), p.Skills...)
	return &clone
}

func (r *stubProfileRepo) FindByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	r.finds++
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	p, ok := r.byUser[userID]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrProfileNotFound
	}
	found, hook := cloneProfile(p), r.onFind
	r.mu.Unlock()

	if hook != nil {
		hook(userID)
	}
	return found, nil
}

func (r *stubProfileRepo) List(_ context.Context) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Profile, 0, len(r.byUser))
	for _, p := range r.byUser {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, userID string, f ports.ProfileFields) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Minute)

	p, ok := r.byUser[userID]
	if !ok {
		p = &domain.Profile{ID: "p-" + userID, UserID: userID, CreatedAt: r.clock}
		r.byUser[userID] = p
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Company, f.Company)
	set(&p.Website, f.Website)
	set(&p.Location, f.Location)
	set(&p.Bio, f.Bio)
	set(&p.GitHubUsername, f.GitHubUsername)
	p.Status = f.Status
	p.Skills = f.Skills
	p.Social = f.Social
	p.UpdatedAt = r.clock
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

type stubCache struct {
	views       map[string]*ports.ProfileView
	gens        map[string]int64
	getErr      error
	setErr      error
	sets        int
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{views: make(map[string]*ports.ProfileView), gens: make(map[string]int64)}
}

func (c *stubCache) Get(_ context.Context, userID string) (*ports.ProfileView, int64, error) {
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	return c.views[userID], c.gens[userID], nil
}

func (c *stubCache) Set(_ context.Context, view *ports.ProfileView, gen int64) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	if c.gens[view.UserID] != gen {
		return nil
	}
	c.views[view.UserID] = view
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	c.gens[userID]++
	delete(c.views, userID)
	return nil
}

type profileFixture struct {
	users    *stubUserRepo
	profiles *stubProfileRepo
	cache    *stubCache
	svc      ports.ProfileService
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{users: newStubUserRepo(), profiles: newStubProfileRepo(), cache: newStubCache()}
	f.svc = NewProfileService(f.profiles, f.users, f.cache, zerolog.Nop())
	return f
}

func (f *profileFixture) addUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &domain.User{Name: name, Email: email, Avatar: GravatarURL(email)})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestProfileService_GetMine_NoProfile(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")

	_, err := f.svc.GetMine(context.Background(), u.ID)
	if !errors.Is(err, domain.ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestProfileService_Upsert_CreatesAndJoinsOwner(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")

	view, err := f.svc.Upsert(context.Background(), ports.UpsertProfileInput{
		UserID:  u.ID,
		Status:  " Developer ",
		Skills:  "go, mongodb,,  docker ",
		Company: "Acme",
		Social:  domain.Social{Twitter: "https://twitter.com/ann"},
	})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if view.Status != "Developer" {
		t.Fatalf("expected trimmed status, got %q", view.Status)
	}
	if want := []string{"go", "mongodb", "docker"}; !reflect.DeepEqual(view.Skills, want) {
		t.Fatalf("expected skills %v, got %v", want, view.Skills)
	}
	if view.User.ID != u.ID || view.User.Name != "Ann" || view.User.Avatar != u.Avatar {
		t.Fatalf("unexpected owner: %+v", view.User)
	}

	mine, err := f.svc.GetMine(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetMine returned error: %v", err)
	}
	if mine.Company != "Acme" || mine.Social.Twitter == "" {
		t.Fatalf("unexpected stored profile: %+v", mine.Profile)
	}
}

func TestProfileService_Upsert_UpdatesInPlace(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	first, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Student", Skills: "go", Company: "Acme"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Developer", Skills: "go,rust"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same profile id, got %q and %q", first.ID, second.ID)
	}
	if second.Status != "Developer" || len(second.Skills) != 2 {
		t.Fatalf("expected updated fields, got %+v", second.Profile)
	}
	if second.Company != "Acme" {
		t.Fatalf("expected omitted company to be kept, got %q", second.Company)
	}
	if len(f.profiles.byUser) != 1 {
		t.Fatalf("expected one profile, got %d", len(f.profiles.byUser))
	}
	if len(f.cache.invalidated) != 2 {
		t.Fatalf("expected cache invalidated on each write, got %v", f.cache.invalidated)
	}
}

func TestProfileService_List(t *testing.T) {
	f := newProfileFixture()
	ann := f.addUser(t, "Ann", "ann@x.com")
	bob := f.addUser(t, "Bob", "bob@x.com")
	ctx := context.Background()

	for _, id := range []string{ann.ID, bob.ID} {
		if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: id, Status: "Dev", Skills: "go"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	views, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(views))
	}
	if views[0].User.Name != "Bob" || views[1].User.Name != "Ann" {
		t.Fatalf("expected newest first with owners joined, got %q then %q", views[0].User.Name, views[1].User.Name)
	}
}

func TestProfileService_List_Empty(t *testing.T) {
	f := newProfileFixture()

	views, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", views)
	}
}

func TestProfileService_GetByUser_ReadsThroughCache(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("first GetByUser: %v", err)
	}
	if _, ok := f.cache.views[u.ID]; !ok {
		t.Fatalf("expected profile to be cached after a miss")
	}

	findsBefore := f.profiles.finds
	second, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("second GetByUser: %v", err)
	}
	if f.profiles.finds != findsBefore {
		t.Fatalf("expected cache hit to skip the store")
	}
	if second.ID != first.ID || second.User.Name != "Ann" {
		t.Fatalf("unexpected cached view: %+v", second)
	}
}

func TestProfileService_GetByUser_DropsViewLoadedBeforeConcurrentWrite(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// A writer lands between the reader's store lookup and its cache fill.
	f.profiles.onFind = func(userID string) {
		f.profiles.onFind = nil
		if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: userID, Status: "Lead", Skills: "go"}); err != nil {
			t.Errorf("concurrent upsert: %v", err)
		}
	}

	stale, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if stale.Status != "Dev" {
		t.Fatalf("expected the reader to see its own lookup, got %q", stale.Status)
	}
	if _, ok := f.cache.views[u.ID]; ok {
		t.Fatalf("stale view was cached after a concurrent write")
	}

	fresh, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if fresh.Status != "Lead" {
		t.Fatalf("expected the newer profile, got %q", fresh.Status)
	}
	if cached, ok := f.cache.views[u.ID]; !ok || cached.Status != "Lead" {
		t.Fatalf("expected the newer view to be cached, got %+v", cached)
	}
}

func TestProfileService_GetByUser_CacheFailureFallsBack(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	f.cache.getErr = errors.New("redis down")
	f.cache.setErr = errors.New("redis down")

	view, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
	if view.Status != "Dev" {
		t.Fatalf("unexpected view: %+v", view.Profile)
	}
	if f.cache.sets != 0 {
		t.Fatalf("expected no cache fill without a known generation, got %d", f.cache.sets)
	}
}

func TestProfileService_GetByUser_NotFound(t *testing.T) {
	f := newProfileFixture()

	_, err := f.svc.GetByUser(context.Background(), "000000000000000000000099")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_GetByUser_StoreFailure(t *testing.T) {
	f := newProfileFixture()
	f.profiles.findErr = errors.New("mongo down")

	_, err := f.svc.GetByUser(context.Background(), "anything")
	if err == nil || errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestProfileService_GetByUser_OwnerDeleted(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := f.users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	view, err := f.svc.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUser returned error: %v", err)
	}
	if view.User.ID != u.ID || view.User.Name != "" {
		t.Fatalf("expected bare owner, got %+v", view.User)
	}
}

func TestProfileService_DeleteAccount(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")
	ctx := context.Background()

	if _, err := f.svc.Upsert(ctx, ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := f.svc.GetByUser(ctx, u.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := f.svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}

	if _, err := f.users.FindByID(ctx, u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user removed, got %v", err)
	}
	if _, ok := f.profiles.byUser[u.ID]; ok {
		t.Fatalf("expected profile removed")
	}
	if _, ok := f.cache.views[u.ID]; ok {
		t.Fatalf("expected cache entry removed")
	}
	if _, err := f.svc.GetByUser(ctx, u.ID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound after deletion, got %v", err)
	}
}

func TestProfileService_DeleteAccount_WithoutProfile(t *testing.T) {
	f := newProfileFixture()
	u := f.addUser(t, "Ann", "ann@x.com")

	if err := f.svc.DeleteAccount(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if err := f.svc.DeleteAccount(context.Background(), u.ID); err != nil {
		t.Fatalf("repeated DeleteAccount should be a no-op, got %v", err)
	}
}

func TestProfileService_NilCache(t *testing.T) {
	users, profiles := newStubUserRepo(), newStubProfileRepo()
	svc := NewProfileService(profiles, users, nil, zerolog.Nop())
	u, _ := users.Create(context.Background(), &domain.User{Name: "Ann", Email: "ann@x.com"})

	if _, err := svc.Upsert(context.Background(), ports.UpsertProfileInput{UserID: u.ID, Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.GetByUser(context.Background(), u.ID); err != nil {
		t.Fatalf("GetByUser without cache: %v", err)
	}
}

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"go", []string{"go"}},
		{" go , rust ", []string{"go", "rust"}},
		{"go,,rust,", []string{"go", "rust"}},
		{" , ", []string{}},
	}
	for _, tc := range tests {
		if got := splitSkills(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitSkills(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

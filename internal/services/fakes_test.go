package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/config"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// fakeDB is an in-memory store shared by the fake repositories. Every
// repository method takes the same lock so a fake transaction can snapshot
// and restore the whole state.
type fakeDB struct {
	txMu      sync.Mutex
	mu        sync.Mutex
	seq       int
	users     map[string]*models.User
	provinces map[string]*models.Province
	hotspots  map[string]*models.Hotspot
	checkIns  []*models.CheckIn
	badges    []*models.Badge

	awardCalls    int
	progressCalls int
	failProgress  error
	failCount     error
	// staleExists makes ExistsValidated miss rows, as a concurrent request would
	staleExists bool
	// malformedIDs makes unknown hotspot ids fail the way postgres rejects non-UUID text
	malformedIDs bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     map[string]*models.User{},
		provinces: map[string]*models.Province{},
		hotspots:  map[string]*models.Hotspot{},
	}
}

func (db *fakeDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *fakeDB) collection() *repositories.Collection {
	return &repositories.Collection{
		User:     &fakeUserRepo{db},
		Province: &fakeProvinceRepo{db},
		Hotspot:  &fakeHotspotRepo{db},
		CheckIn:  &fakeCheckInRepo{db},
		Badge:    &fakeBadgeRepo{db},
	}
}

type fakeSnapshot struct {
	users    map[string]models.User
	checkIns []*models.CheckIn
}

func (db *fakeDB) snapshot() fakeSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := fakeSnapshot{users: map[string]models.User{}}
	for id, u := range db.users {
		s.users[id] = *u
	}
	s.checkIns = append(s.checkIns, db.checkIns...)
	return s
}

func (db *fakeDB) restore(s fakeSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = map[string]*models.User{}
	for id, u := range s.users {
		u := u
		db.users[id] = &u
	}
	db.checkIns = s.checkIns
}

// WithTransaction implements Transactor with rollback on error. Transactions
// are serialized, standing in for the row lock taken by GetExpForUpdate.
func (db *fakeDB) WithTransaction(ctx context.Context, fn func(tx *repositories.Collection) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	snap := db.snapshot()
	if err := fn(db.collection()); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *fakeDB) addUser(u *models.User) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID == "" {
		u.ID = db.nextID("user")
	}
	if u.Level == 0 {
		u.Level = 1
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().Add(time.Duration(db.seq) * time.Millisecond)
	}
	db.users[u.ID] = u
	return u
}

func (db *fakeDB) addProvince(p *models.Province) *models.Province {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID == "" {
		p.ID = db.nextID("province")
	}
	db.provinces[p.ID] = p
	return p
}

func (db *fakeDB) addHotspot(h *models.Hotspot) *models.Hotspot {
	db.mu.Lock()
	defer db.mu.Unlock()
	if h.ID == "" {
		h.ID = db.nextID("hotspot")
	}
	db.hotspots[h.ID] = h
	return h
}

func (db *fakeDB) user(id string) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.users[id]
}

func (db *fakeDB) checkInCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.checkIns)
}

// ===============================
// USERS
// ===============================

type fakeUserRepo struct{ db *fakeDB }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &repositories.DuplicateKeyError{Constraint: "users_email_key"}
		}
		if u.Username == user.Username {
			return &repositories.DuplicateKeyError{Constraint: "users_username_key"}
		}
	}
	user.ID = r.db.nextID("user")
	user.CreatedAt = time.Now()
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) update(id string, fn func(u *models.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) {
		u.IsVerified = true
		u.VerificationCode = nil
	})
}

func (r *fakeUserRepo) UpdateUsername(ctx context.Context, id, username string) error {
	r.db.mu.Lock()
	for _, u := range r.db.users {
		if u.ID != id && u.Username == username {
			r.db.mu.Unlock()
			return &repositories.DuplicateKeyError{Constraint: "users_username_key"}
		}
	}
	r.db.mu.Unlock()
	return r.update(id, func(u *models.User) { u.Username = username })
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *fakeUserRepo) GetExpForUpdate(ctx context.Context, id string) (int64, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.Exp, nil
}

func (r *fakeUserRepo) UpdateProgress(ctx context.Context, id string, exp int64, level int) error {
	r.db.mu.Lock()
	r.db.progressCalls++
	fail := r.db.failProgress
	r.db.mu.Unlock()
	if fail != nil {
		return fail
	}
	return r.update(id, func(u *models.User) {
		u.Exp = exp
		u.Level = level
	})
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	users := make([]*models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Exp != users[j].Exp {
			return users[i].Exp > users[j].Exp
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	entries := []*models.LeaderboardEntry{}
	for i, u := range users {
		if i >= limit {
			break
		}
		entries = append(entries, &models.LeaderboardEntry{
			Rank: i + 1, ID: u.ID, Username: u.Username, Exp: u.Exp, Level: u.Level,
		})
	}
	return entries, nil
}

// ===============================
// PROVINCES & HOTSPOTS
// ===============================

type fakeProvinceRepo struct{ db *fakeDB }

func (r *fakeProvinceRepo) Create(ctx context.Context, p *models.Province) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.provinces {
		if existing.Name == p.Name {
			return &repositories.DuplicateKeyError{Constraint: "provinces_name_key"}
		}
	}
	p.ID = r.db.nextID("province")
	cp := *p
	r.db.provinces[p.ID] = &cp
	return nil
}

func (r *fakeProvinceRepo) GetByID(ctx context.Context, id string) (*models.Province, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.provinces[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProvinceRepo) List(ctx context.Context) ([]*models.Province, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Province{}
	for _, p := range r.db.provinces {
		cp := *p
		for _, h := range r.db.hotspots {
			if h.ProvinceID == p.ID {
				cp.HotspotCount++
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProvinceRepo) Update(ctx context.Context, p *models.Province) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.provinces[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	r.db.provinces[p.ID] = &cp
	return nil
}

func (r *fakeProvinceRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.provinces[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.db.provinces, id)
	for hid, h := range r.db.hotspots {
		if h.ProvinceID == id {
			delete(r.db.hotspots, hid)
		}
	}
	return nil
}

type fakeHotspotRepo struct{ db *fakeDB }

func (r *fakeHotspotRepo) Create(ctx context.Context, h *models.Hotspot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h.ID = r.db.nextID("hotspot")
	cp := *h
	r.db.hotspots[h.ID] = &cp
	return nil
}

func (r *fakeHotspotRepo) GetByID(ctx context.Context, id string) (*models.Hotspot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.hotspots[id]
	if !ok && r.db.malformedIDs {
		return nil, fmt.Errorf("failed to get hotspot by ID: %w",
			&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})
	}
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHotspotRepo) List(ctx context.Context) ([]*models.Hotspot, error) {
	return r.filter(func(*models.Hotspot) bool { return true }), nil
}

func (r *fakeHotspotRepo) ListByProvince(ctx context.Context, provinceID string) ([]*models.Hotspot, error) {
	return r.filter(func(h *models.Hotspot) bool { return h.ProvinceID == provinceID }), nil
}

func (r *fakeHotspotRepo) filter(keep func(*models.Hotspot) bool) []*models.Hotspot {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Hotspot{}
	for _, h := range r.db.hotspots {
		if keep(h) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeHotspotRepo) Update(ctx context.Context, h *models.Hotspot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.hotspots[h.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *h
	r.db.hotspots[h.ID] = &cp
	return nil
}

func (r *fakeHotspotRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.hotspots[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.db.hotspots, id)
	return nil
}

// ===============================
// CHECK-INS & BADGES
// ===============================

type fakeCheckInRepo struct{ db *fakeDB }

func (r *fakeCheckInRepo) Create(ctx context.Context, c *models.CheckIn) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.checkIns {
		if existing.IsValidated && c.IsValidated && existing.UserID == c.UserID && existing.HotspotID == c.HotspotID {
			return &repositories.DuplicateKeyError{Constraint: "uq_checkins_user_hotspot_validated"}
		}
	}
	c.ID = r.db.nextID("checkin")
	c.Timestamp = time.Now()
	cp := *c
	r.db.checkIns = append(r.db.checkIns, &cp)
	return nil
}

func (r *fakeCheckInRepo) ExistsValidated(ctx context.Context, userID, hotspotID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.staleExists {
		return false, nil
	}
	for _, c := range r.db.checkIns {
		if c.IsValidated && c.UserID == userID && c.HotspotID == hotspotID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCheckInRepo) CountValidated(ctx context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCount != nil {
		return 0, r.db.failCount
	}
	n := 0
	for _, c := range r.db.checkIns {
		if c.IsValidated && c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCheckInRepo) History(ctx context.Context, userID string) ([]*models.CheckInHistoryItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.CheckInHistoryItem
	for i := len(r.db.checkIns) - 1; i >= 0; i-- {
		c := r.db.checkIns[i]
		if c.UserID != userID {
			continue
		}
		item := &models.CheckInHistoryItem{CheckIn: *c}
		if h, ok := r.db.hotspots[c.HotspotID]; ok {
			item.Hotspot = models.HotspotSummary{Name: h.Name, Type: h.Type, ProvinceID: h.ProvinceID, ImageURL: h.ImageURL}
		}
		out = append(out, item)
	}
	return out, nil
}

type fakeBadgeRepo struct{ db *fakeDB }

func (r *fakeBadgeRepo) Award(ctx context.Context, b *models.Badge) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.awardCalls++
	for _, existing := range r.db.badges {
		if existing.UserID == b.UserID && existing.Name == b.Name {
			return false, nil
		}
	}
	b.ID = r.db.nextID("badge")
	b.CreatedAt = time.Now()
	cp := *b
	r.db.badges = append(r.db.badges, &cp)
	return true, nil
}

func (r *fakeBadgeRepo) ListByUser(ctx context.Context, userID string) ([]*models.Badge, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Badge
	for i := len(r.db.badges) - 1; i >= 0; i-- {
		if r.db.badges[i].UserID == userID {
			cp := *r.db.badges[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) NamesByUser(ctx context.Context, userID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var names []string
	for _, b := range r.db.badges {
		if b.UserID == userID {
			names = append(names, b.Name)
		}
	}
	return names, nil
}

// ===============================
// COLLABORATORS
// ===============================

type fakeVerifier struct {
	mu     sync.Mutex
	ok     bool
	err    error
	calls  int
	labels []string
}

func (v *fakeVerifier) VerifyLandmark(ctx context.Context, image, label string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	v.labels = append(v.labels, label)
	return v.ok, v.err
}

type fakeStorage struct {
	mu      sync.Mutex
	err     error
	folders []string
	payload []string
}

func (s *fakeStorage) Upload(ctx context.Context, data, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.folders = append(s.folders, folder)
	s.payload = append(s.payload, data)
	return fmt.Sprintf("https://cdn.example.com/%s/%d.jpg", folder, len(s.folders)), nil
}

func (s *fakeStorage) uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.folders)
}

type fakeGeocoder struct {
	state string
	err   error
}

func (g *fakeGeocoder) ReverseState(ctx context.Context, lat, lon float64) (string, error) {
	return g.state, g.err
}

type fakeImages struct {
	url string
	err error
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return f.url, f.err
}

type fakeEmail struct {
	mu    sync.Mutex
	err   error
	codes map[string]string
}

func (e *fakeEmail) SendVerificationCode(ctx context.Context, email, username, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.codes == nil {
		e.codes = map[string]string{}
	}
	e.codes[email] = code
	return e.err
}

// failingBadges always errors, to prove badge failures never fail a check-in
type failingBadges struct{ BadgeService }

func (failingBadges) EvaluateAndAward(ctx context.Context, userID string) ([]*models.Badge, error) {
	return nil, errors.New("badge store down")
}

// ===============================
// HARNESS
// ===============================

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: 7 * 24 * time.Hour, BCryptCost: 4},
		Game: config.GameConfig{
			GeofenceRadiusMeters: 100,
			CheckInExpReward:     100,
			LevelConstant:        100,
			ProofFolder:          "rekaloka_proofs",
			UploadFolder:         "rekaloka_general",
		},
		Cache: config.CacheConfig{GeoTTL: time.Hour, LeaderboardTTL: 10 * time.Minute},
	}
}

type harness struct {
	db       *fakeDB
	cache    cache.Cache
	verifier *fakeVerifier
	storage  *fakeStorage
	geocoder *fakeGeocoder
	images   *fakeImages
	email    *fakeEmail
	sc       *ServiceCollection
}

func newHarness(mutate ...func(cfg *config.Config)) *harness {
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	h := &harness{
		db:       newFakeDB(),
		cache:    cache.NewMemoryCache(&cache.Config{MaxKeys: 1000, TTL: time.Hour}, nil),
		verifier: &fakeVerifier{ok: true},
		storage:  &fakeStorage{},
		geocoder: &fakeGeocoder{},
		images:   &fakeImages{url: "data:image/png;base64,aGVsbG8="},
		email:    &fakeEmail{},
	}
	h.sc = NewServiceCollectionFromDeps(cfg, Dependencies{
		Repositories: h.db.collection(),
		Transactor:   h.db,
		Cache:        h.cache,
		Storage:      h.storage,
		Verifier:     h.verifier,
		Images:       h.images,
		Geocoder:     h.geocoder,
		Email:        h.email,
	}, zap.NewNop())
	return h
}

func (h *harness) cached(key string) bool {
	return h.cache.Exists(context.Background(), key)
}

func float64Ptr(f float64) *float64 { return &f }

func stringPtr(s string) *string { return &s }

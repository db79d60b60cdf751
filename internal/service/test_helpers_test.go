package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"picstorm-server/internal/cache"
	"picstorm-server/internal/common"
	"picstorm-server/internal/model"
	"picstorm-server/internal/repository"
	"picstorm-server/internal/storage"
	"picstorm-server/internal/testutils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	repos         *repository.Repositories
	objects       *failingStore
	auth          *AuthService
	users         *UserService
	publications  *PublicationService
	subscriptions *SubscriptionService
}

// failingStore 包装 LocalStore，可按操作注入失败。
type failingStore struct {
	inner *storage.LocalStore

	mu         sync.Mutex
	failSave   bool
	failDelete bool
}

var errInjected = errors.New("injected storage failure")

func (f *failingStore) Save(ctx context.Context, name string, data []byte) error {
	f.mu.Lock()
	fail := f.failSave
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.inner.Save(ctx, name, data)
}

func (f *failingStore) Get(ctx context.Context, name string) ([]byte, error) {
	return f.inner.Get(ctx, name)
}

func (f *failingStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	fail := f.failDelete
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.inner.Delete(ctx, name)
}

func (f *failingStore) setFailSave(v bool) {
	f.mu.Lock()
	f.failSave = v
	f.mu.Unlock()
}

func (f *failingStore) setFailDelete(v bool) {
	f.mu.Lock()
	f.failDelete = v
	f.mu.Unlock()
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutils.SetupDB(t)
	repos := repository.NewRepositories(
		repository.NewUserRepository(gdb),
		repository.NewPictureRepository(gdb),
		repository.NewPublicationRepository(gdb),
		repository.NewReactionRepository(gdb),
		repository.NewSubscriptionRepository(gdb),
	)
	local, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}
	objects := &failingStore{inner: local}
	roles := cache.NewRoleCache(nil, "test")

	return &testEnv{
		db:            gdb,
		repos:         repos,
		objects:       objects,
		auth:          NewAuthService(repos),
		users:         NewUserService(repos, objects, roles),
		publications:  NewPublicationService(repos, objects),
		subscriptions: NewSubscriptionService(repos),
	}
}

func (e *testEnv) createUser(t *testing.T, nickname string, role model.Role) *model.User {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &model.User{Nickname: nickname, Email: nickname + "@example.com", PasswordHash: string(hashed), Role: role}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

// createPublication 直接写库，绕过存储，便于控制创建时间与状态。
func (e *testEnv) createPublication(t *testing.T, owner *model.User, state model.PublicationState, created time.Time) *model.Publication {
	t.Helper()
	pic := &model.Picture{Type: model.PictureTypePNG}
	if err := e.db.Create(pic).Error; err != nil {
		t.Fatalf("创建图片失败: %v", err)
	}
	p := &model.Publication{OwnerID: owner.ID, PictureID: pic.ID, State: state, CreatedAt: created}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("创建发布失败: %v", err)
	}
	return p
}

func (e *testEnv) upload(t *testing.T, owner *model.User) *model.Publication {
	t.Helper()
	p, err := e.publications.Upload(context.Background(), owner.Nickname, model.PictureTypePNG, testutils.MinimalPNG())
	if err != nil {
		t.Fatalf("Upload 错误: %v", err)
	}
	return p
}

func (e *testEnv) rating(t *testing.T, publicationID uint) int64 {
	t.Helper()
	var p model.Publication
	if err := e.db.First(&p, publicationID).Error; err != nil {
		t.Fatalf("读取发布失败: %v", err)
	}
	return p.Rating
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("计数失败: %v", err)
	}
	return n
}

func assertCode(t *testing.T, err error, code common.ErrorCode) {
	t.Helper()
	if !common.IsCode(err, code) {
		t.Fatalf("期望错误码 %s，实际为 %v", code, err)
	}
}

func reactionPtr(r model.ReactionType) *model.ReactionType { return &r }

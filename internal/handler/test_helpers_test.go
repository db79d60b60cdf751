package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"picstorm-server/internal/cache"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"
	"picstorm-server/internal/repository"
	"picstorm-server/internal/service"
	"picstorm-server/internal/storage"
	"picstorm-server/internal/testutils"
	"picstorm-server/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	handlers *Handlers
	users    *service.UserService
	engine   *gin.Engine
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
	objects, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}
	users := service.NewUserService(repos, objects, cache.NewRoleCache(nil, "test"))
	h := NewHandlers(
		NewAuthHandler(service.NewAuthService(repos)),
		NewPublicationHandler(service.NewPublicationService(repos, objects)),
		NewUserHandler(users),
		NewSubscriptionHandler(service.NewSubscriptionService(repos)),
	)
	return &testEnv{db: gdb, handlers: h, users: users, engine: newEngine(h, users)}
}

// newEngine 按线上路由的鉴权方式注册处理器
func newEngine(h *Handlers, roles middleware.RoleLookup) *gin.Engine {
	r := gin.New()
	authed := func(a model.Authority) []gin.HandlerFunc {
		return []gin.HandlerFunc{middleware.JWTAuth(), middleware.BannedUserCheck(roles), middleware.RequireAuthority(a)}
	}
	optional := middleware.OptionalJWTAuth()

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	r.GET("/publication/feed", optional, h.Publication.GetFeed)
	r.POST("/publication", append(authed(model.AuthorityUpload), h.Publication.Upload)...)
	r.GET("/publication/:id/picture", h.Publication.GetPicture)
	r.PUT("/publication/:id/reaction", append(authed(model.AuthorityReact), h.Publication.SetReaction)...)
	r.PUT("/publication/:id", append(authed(model.AuthorityBanPublication), h.Publication.Ban)...)
	r.DELETE("/publication/:id", append(authed(model.AuthorityUpload), h.Publication.Delete)...)

	r.GET("/user/search", optional, h.User.Search)
	r.GET("/user/:id/profile", optional, h.User.GetProfile)
	r.GET("/user/:id/avatar", h.User.GetAvatar)
	r.POST("/user/avatar", append(authed(model.AuthorityUpload), h.User.UploadAvatar)...)
	r.PUT("/user/:id/ban", append(authed(model.AuthorityBanUser), h.User.BanUser)...)
	r.PUT("/user/:id/admin", append(authed(model.AuthorityManageAdmins), h.User.ChangeAdminRole)...)

	r.GET("/subscribers/:id", optional, h.Subscription.ListSubscribers)
	r.GET("/subscriptions/:id", optional, h.Subscription.ListSubscriptions)
	r.PUT("/subscription/:id", append(authed(model.AuthoritySubscribe), h.Subscription.Toggle)...)
	return r
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

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, user *model.User, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != nil {
		token, err := utils.GenerateAccessToken(user, time.Hour)
		if err != nil {
			t.Fatalf("生成令牌失败: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	return e.do(t, method, path, body, user, "application/json")
}

func (e *testEnv) doUpload(t *testing.T, path, pictureType string, data []byte, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := pictureForm(t, pictureType, data)
	return e.do(t, http.MethodPost, path, body, user, contentType)
}

func pictureForm(t *testing.T, pictureType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("pictureType", pictureType); err != nil {
		t.Fatalf("写入表单失败: %v", err)
	}
	if data != nil {
		part, err := mw.CreateFormFile("picture", "picture.bin")
		if err != nil {
			t.Fatalf("创建文件字段失败: %v", err)
		}
		_, _ = part.Write(data)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("解析响应失败: %v body=%s", err, w.Body.String())
	}
}

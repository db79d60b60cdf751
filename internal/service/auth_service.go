package service

import (
	"strings"
	"time"

	"picstorm-server/internal/common"
	"picstorm-server/internal/config"
	"picstorm-server/internal/logger"
	"picstorm-server/internal/model"
	repo "picstorm-server/internal/repository"
	"picstorm-server/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// TokenResult 登录/注册成功后返回的访问令牌
type TokenResult struct {
	AccessToken string `json:"accessToken"`
}

type RegisterInput struct {
	Nickname string
	Email    string
	Password string
}

// Register 注册普通用户并直接签发令牌。
func (s *AuthService) Register(input RegisterInput) (*TokenResult, error) {
	nickname := strings.TrimSpace(input.Nickname)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if ok, msg := utils.ValidateNickname(nickname); !ok {
		return nil, common.NewValidationError(msg)
	}
	if ok, msg := utils.ValidateEmail(email); !ok {
		return nil, common.NewValidationError(msg)
	}
	if ok, msg := utils.ValidatePassword(input.Password); !ok {
		return nil, common.NewValidationError(msg)
	}

	exists, err := s.userStore.FieldExists(repo.UserFieldNickname, nickname)
	if err != nil {
		return nil, internalError("注册失败，请稍后重试", err)
	}
	if exists {
		return nil, common.NewConflictError("该昵称已被使用")
	}
	exists, err = s.userStore.FieldExists(repo.UserFieldEmail, email)
	if err != nil {
		return nil, internalError("注册失败，请稍后重试", err)
	}
	if exists {
		return nil, common.NewConflictError("该邮箱已被注册")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError("注册失败，请稍后重试", err)
	}

	user := &model.User{
		Nickname:     nickname,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleOrdinary,
	}
	if err := s.userStore.Create(user); err != nil {
		// 并发注册时由唯一索引兜底
		if repo.IsUniqueViolation(err) {
			return nil, common.NewConflictError("该昵称或邮箱已被使用")
		}
		return nil, internalError("注册失败，请稍后重试", err)
	}

	logger.Info("✅ 新用户注册", logger.Fields{"user_id": user.ID, "nickname": user.Nickname})
	return s.IssueToken(user)
}

// Login 校验昵称与密码；被封禁用户无法登录。
func (s *AuthService) Login(nickname, password string) (*TokenResult, error) {
	user, err := s.userStore.FindByNickname(strings.TrimSpace(nickname))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewUnauthorizedError("昵称或密码错误")
		}
		return nil, internalError("登录失败，请稍后重试", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewUnauthorizedError("昵称或密码错误")
	}
	return s.IssueToken(user)
}

func (s *AuthService) IssueToken(user *model.User) (*TokenResult, error) {
	if user.Role == model.RoleBanned {
		return nil, common.NewForbiddenError("该账号已被封禁")
	}

	hours := config.Get().JWT.ExpirationHours
	if hours <= 0 {
		hours = 24
	}
	token, err := utils.GenerateAccessToken(user, time.Hour*time.Duration(hours))
	if err != nil {
		return nil, internalError("登录失败，请稍后重试", err)
	}
	return &TokenResult{AccessToken: token}, nil
}

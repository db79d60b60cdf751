package service

import (
	"context"
	"errors"

	"picstorm-server/internal/common"
	"picstorm-server/internal/logger"
	"picstorm-server/internal/metrics"
	"picstorm-server/internal/model"
	repo "picstorm-server/internal/repository"
	"picstorm-server/internal/storage"
)

// UserLine 用户列表中的一行。Subscribed 仅在已登录且不是自己时有值。
type UserLine struct {
	UserID     uint               `json:"userId"`
	Nickname   string             `json:"nickname"`
	AvatarType *model.PictureType `json:"avatarType"`
	Subscribed *bool              `json:"subscribed"`
}

type UserProfile struct {
	ID                 uint               `json:"id"`
	Nickname           string             `json:"nickname"`
	Role               model.Role         `json:"role"`
	AvatarType         *model.PictureType `json:"avatarType"`
	Subscribed         *bool              `json:"subscribed"`
	SubscriptionsCount int64              `json:"subscriptionsCount"`
	SubscribersCount   int64              `json:"subscribersCount"`
	PublicationsCount  int64              `json:"publicationsCount"`
}

// UserRoleResult 角色变更结果
type UserRoleResult struct {
	UserID  uint       `json:"userId"`
	NewRole model.Role `json:"newRole"`
}

// SearchUsers 按昵称片段搜索（不区分大小写），按昵称排序。
func (s *UserService) SearchUsers(ctx context.Context, viewerNickname, nicknamePart string, index, size int) (*PageResult[UserLine], error) {
	if err := validatePage(index, size); err != nil {
		return nil, err
	}
	viewer, err := findOptionalViewer(s.userStore, viewerNickname)
	if err != nil {
		return nil, err
	}
	users, err := s.userStore.SearchByNickname(nicknamePart, index*size, size+1)
	if err != nil {
		return nil, internalError("搜索用户失败", err)
	}
	users, last := trimPage(users, size)
	lines, err := buildUserLines(s.pictureStore, s.subscriptionStore, viewer, users)
	if err != nil {
		return nil, err
	}
	return &PageResult[UserLine]{Values: lines, Index: index, Size: size, Last: last}, nil
}

// buildUserLines 为列表中的每个用户补充头像类型与订阅状态。
func buildUserLines(pictures repo.PictureStore, subscriptions repo.SubscriptionStore, viewer *model.User, users []model.User) ([]UserLine, error) {
	lines := make([]UserLine, 0, len(users))
	for i := range users {
		u := &users[i]
		line := UserLine{UserID: u.ID, Nickname: u.Nickname}
		avatarType, err := avatarTypeOf(pictures, u)
		if err != nil {
			return nil, err
		}
		line.AvatarType = avatarType
		if viewer != nil && viewer.ID != u.ID {
			subscribed, err := subscriptions.Exists(viewer.ID, u.ID)
			if err != nil {
				return nil, internalError("查询订阅状态失败", err)
			}
			line.Subscribed = &subscribed
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func avatarTypeOf(pictures repo.PictureStore, user *model.User) (*model.PictureType, error) {
	if user.AvatarID == nil {
		return nil, nil
	}
	picture, err := pictures.FindByID(*user.AvatarID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, internalError("查询头像失败", err)
	}
	return &picture.Type, nil
}

// GetProfile 被封禁用户的主页不可见。
func (s *UserService) GetProfile(ctx context.Context, requesterNickname string, userID uint) (*UserProfile, error) {
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleBanned {
		return nil, common.NewValidationError("该用户已被封禁")
	}
	requester, err := findOptionalViewer(s.userStore, requesterNickname)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{ID: user.ID, Nickname: user.Nickname, Role: user.Role}
	if profile.AvatarType, err = avatarTypeOf(s.pictureStore, user); err != nil {
		return nil, err
	}
	if requester != nil && requester.ID != user.ID {
		subscribed, err := s.subscriptionStore.Exists(requester.ID, user.ID)
		if err != nil {
			return nil, internalError("查询订阅状态失败", err)
		}
		profile.Subscribed = &subscribed
	}
	if profile.SubscriptionsCount, err = s.subscriptionStore.CountSubscriptions(user.ID); err != nil {
		return nil, internalError("查询用户信息失败", err)
	}
	if profile.SubscribersCount, err = s.subscriptionStore.CountSubscribers(user.ID); err != nil {
		return nil, internalError("查询用户信息失败", err)
	}
	if profile.PublicationsCount, err = s.publicationStore.CountByOwner(user.ID); err != nil {
		return nil, internalError("查询用户信息失败", err)
	}
	return profile, nil
}

// GetAvatar 读取用户头像
func (s *UserService) GetAvatar(ctx context.Context, userID uint) (*PictureContent, error) {
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarID == nil {
		return nil, common.NewNotFoundError("该用户没有头像")
	}
	picture, err := s.pictureStore.FindByID(*user.AvatarID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewNotFoundError("该用户没有头像")
		}
		return nil, internalError("读取头像失败", err)
	}
	data, err := s.objects.Get(ctx, storage.AvatarName(picture.ID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, common.NewNotFoundError("该用户没有头像")
		}
		metrics.RecordStorageFailure("get")
		return nil, common.NewStorageError("读取头像失败", err)
	}
	return &PictureContent{Type: picture.Type, Data: data}, nil
}

// UploadAvatar 保存新头像后再删除旧头像（先删对象再删记录）。
func (s *UserService) UploadAvatar(ctx context.Context, nickname string, pictureType model.PictureType, data []byte) error {
	user, err := findUserByNickname(s.userStore, nickname)
	if err != nil {
		return err
	}
	if err := validatePicture(pictureType, data); err != nil {
		return err
	}

	picture := &model.Picture{Type: pictureType}
	if err := s.pictureStore.Create(picture); err != nil {
		return internalError("保存头像失败", err)
	}
	name := storage.AvatarName(picture.ID)
	if err := s.objects.Save(ctx, name, data); err != nil {
		metrics.RecordStorageFailure("save")
		if delErr := s.pictureStore.Delete(picture.ID); delErr != nil {
			logger.Error("❌ 补偿删除头像记录失败", logger.Fields{"picture_id": picture.ID, "error": delErr.Error()})
		}
		return common.NewStorageError("保存头像失败", err)
	}

	previous, err := s.userStore.ReplaceAvatar(user.ID, picture.ID)
	if err != nil {
		if delErr := s.objects.Delete(ctx, name); delErr != nil {
			logger.Error("❌ 补偿删除头像对象失败", logger.Fields{"object": name, "error": delErr.Error()})
		}
		if delErr := s.pictureStore.Delete(picture.ID); delErr != nil {
			logger.Error("❌ 补偿删除头像记录失败", logger.Fields{"picture_id": picture.ID, "error": delErr.Error()})
		}
		return internalError("更新头像失败", err)
	}

	if previous != nil {
		if err := s.objects.Delete(ctx, storage.AvatarName(*previous)); err != nil {
			metrics.RecordStorageFailure("delete")
			// 旧对象残留不影响新头像生效
			logger.Error("❌ 删除旧头像失败", logger.Fields{"picture_id": *previous, "error": err.Error()})
			return nil
		}
		if err := s.pictureStore.Delete(*previous); err != nil {
			logger.Error("❌ 删除旧头像记录失败", logger.Fields{"picture_id": *previous, "error": err.Error()})
		}
	}
	return nil
}

// BanUser 只能封禁普通用户；同一事务内将其 VISIBLE 发布置为 USER_BANNED。
func (s *UserService) BanUser(ctx context.Context, requesterNickname string, userID uint) (*UserRoleResult, error) {
	requester, err := findUserByNickname(s.userStore, requesterNickname)
	if err != nil {
		return nil, err
	}
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleOrdinary {
		return nil, common.NewForbiddenError("只能封禁普通用户")
	}

	affected, err := s.userStore.BanWithPublications(user.ID)
	if err != nil {
		return nil, internalError("封禁用户失败", err)
	}
	s.roles.Invalidate(ctx, user.ID)

	logger.Info("⚠️ 用户已封禁", logger.Fields{
		"user_id":      user.ID,
		"moderator_id": requester.ID,
		"publications": affected,
	})
	return &UserRoleResult{UserID: user.ID, NewRole: model.RoleBanned}, nil
}

// ChangeAdminRole 在 ORDINARY 与 ADMIN 之间切换，其它角色不可变更。
func (s *UserService) ChangeAdminRole(ctx context.Context, requesterNickname string, userID uint) (*UserRoleResult, error) {
	if _, err := findUserByNickname(s.userStore, requesterNickname); err != nil {
		return nil, err
	}
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return nil, err
	}

	var next model.Role
	switch user.Role {
	case model.RoleAdmin:
		next = model.RoleOrdinary
	case model.RoleOrdinary:
		next = model.RoleAdmin
	default:
		return nil, common.NewForbiddenError("该用户的角色不可变更")
	}
	if err := s.userStore.UpdateRole(user.ID, next); err != nil {
		return nil, internalError("变更角色失败", err)
	}
	s.roles.Invalidate(ctx, user.ID)
	return &UserRoleResult{UserID: user.ID, NewRole: next}, nil
}

// CurrentRole 读取用户当前角色，优先走缓存。
func (s *UserService) CurrentRole(ctx context.Context, userID uint) (model.Role, error) {
	if role, ok := s.roles.Get(ctx, userID); ok {
		metrics.RecordRoleCacheHit()
		return role, nil
	}
	metrics.RecordRoleCacheMiss()
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return "", err
	}
	s.roles.Set(ctx, user.ID, user.Role)
	return user.Role, nil
}

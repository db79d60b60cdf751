package service

import (
	"context"

	"picstorm-server/internal/common"
	"picstorm-server/internal/model"
	repo "picstorm-server/internal/repository"
)

type SubscriptionResult struct {
	TargetID   uint `json:"targetId"`
	Subscribed bool `json:"subscribed"`
}

// Toggle 已订阅则取消，否则订阅。
func (s *SubscriptionService) Toggle(ctx context.Context, requesterNickname string, targetID uint) (*SubscriptionResult, error) {
	requester, err := findUserByNickname(s.userStore, requesterNickname)
	if err != nil {
		return nil, err
	}
	target, err := findUserByID(s.userStore, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == model.RoleBanned {
		return nil, common.NewValidationError("该用户已被封禁")
	}
	if requester.ID == target.ID {
		return nil, common.NewValidationError("不能订阅自己")
	}

	subscribed, err := s.subscriptionStore.Toggle(requester.ID, target.ID)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			// 并发请求已创建了同一订阅
			return &SubscriptionResult{TargetID: target.ID, Subscribed: true}, nil
		}
		return nil, internalError("变更订阅失败", err)
	}
	return &SubscriptionResult{TargetID: target.ID, Subscribed: subscribed}, nil
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, viewerNickname string, userID uint, index, size int) (*PageResult[UserLine], error) {
	return s.listRelated(viewerNickname, userID, repo.RelationSubscribers, index, size)
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, viewerNickname string, userID uint, index, size int) (*PageResult[UserLine], error) {
	return s.listRelated(viewerNickname, userID, repo.RelationSubscriptions, index, size)
}

func (s *SubscriptionService) listRelated(viewerNickname string, userID uint, relation repo.UserRelation, index, size int) (*PageResult[UserLine], error) {
	if err := validatePage(index, size); err != nil {
		return nil, err
	}
	user, err := findUserByID(s.userStore, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleBanned {
		return nil, common.NewValidationError("该用户已被封禁")
	}
	viewer, err := findOptionalViewer(s.userStore, viewerNickname)
	if err != nil {
		return nil, err
	}

	users, err := s.userStore.ListRelated(user.ID, relation, index*size, size+1)
	if err != nil {
		return nil, internalError("查询订阅列表失败", err)
	}
	users, last := trimPage(users, size)
	lines, err := buildUserLines(s.pictureStore, s.subscriptionStore, viewer, users)
	if err != nil {
		return nil, err
	}
	return &PageResult[UserLine]{Values: lines, Index: index, Size: size, Last: last}, nil
}

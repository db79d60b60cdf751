package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"picstorm-server/internal/common"
	"picstorm-server/internal/config"
	"picstorm-server/internal/feed"
	"picstorm-server/internal/logger"
	"picstorm-server/internal/metrics"
	"picstorm-server/internal/model"
	repo "picstorm-server/internal/repository"
	"picstorm-server/internal/storage"
	"picstorm-server/internal/utils"

	"github.com/cenkalti/backoff/v4"
)

const maxReactionAttempts = 3

// FeedRequest ViewerNickname 为空表示匿名浏览。
type FeedRequest struct {
	ViewerNickname string
	Date           feed.DateConstraint
	Sort           feed.SortConstraint
	User           feed.UserConstraint
	FilterUserID   *uint
	Index          int
	Size           int
}

type PublicationInfo struct {
	PublicationID uint                `json:"publicationId"`
	OwnerID       uint                `json:"ownerId"`
	OwnerNickname string              `json:"ownerNickname"`
	Rating        int64               `json:"rating"`
	Uploaded      time.Time           `json:"uploaded"`
	UserReaction  *model.ReactionType `json:"userReaction"`
}

// PictureContent 图片字节及其类型
type PictureContent struct {
	Type model.PictureType
	Data []byte
}

// GetFeed 按过滤条件分页查询 VISIBLE 发布，并附带当前用户的 Reaction。
func (s *PublicationService) GetFeed(ctx context.Context, req FeedRequest) (*PageResult[PublicationInfo], error) {
	if err := validatePage(req.Index, req.Size); err != nil {
		return nil, err
	}
	if req.User == feed.UserSubscriptions && req.ViewerNickname == "" {
		return nil, common.NewForbiddenError("查看订阅动态需要登录")
	}

	viewer, err := findOptionalViewer(s.userStore, req.ViewerNickname)
	if err != nil {
		return nil, err
	}
	var viewerID *uint
	if viewer != nil {
		viewerID = &viewer.ID
	}

	// 只要传入了 filterUser 就必须存在，与 userFilter 取值无关
	var filterUserID *uint
	if req.User == feed.UserSpecified && req.FilterUserID == nil {
		return nil, common.NewValidationError("请指定要查看的用户")
	}
	if req.FilterUserID != nil {
		filterUser, err := findUserByID(s.userStore, *req.FilterUserID)
		if err != nil {
			return nil, err
		}
		filterUserID = &filterUser.ID
	}

	spec, err := feed.Build(s.now(), req.Date, req.User, viewerID, filterUserID)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrMissingViewer):
			return nil, common.NewForbiddenError("查看订阅动态需要登录")
		default:
			return nil, common.NewValidationError(err.Error())
		}
	}

	rows, err := s.publicationStore.Feed(spec, feed.Order(req.Sort), req.Index*req.Size, req.Size+1)
	if err != nil {
		return nil, internalError("查询动态失败", err)
	}
	rows, last := trimPage(rows, req.Size)

	values := make([]PublicationInfo, 0, len(rows))
	for _, p := range rows {
		info := PublicationInfo{
			PublicationID: p.ID,
			OwnerID:       p.OwnerID,
			OwnerNickname: p.Owner.Nickname,
			Rating:        p.Rating,
			Uploaded:      p.CreatedAt,
		}
		if viewer != nil {
			reaction, err := s.reactionStore.FindByPublicationAndUser(p.ID, viewer.ID)
			switch {
			case err == nil:
				reactionType := reaction.Type
				info.UserReaction = &reactionType
			case !repo.IsNotFound(err):
				return nil, internalError("查询动态失败", err)
			}
		}
		values = append(values, info)
	}

	return &PageResult[PublicationInfo]{Values: values, Index: req.Index, Size: req.Size, Last: last}, nil
}

// MaxPictureBytes 单张图片的字节上限
func MaxPictureBytes() int {
	mb := config.Get().Storage.MaxPictureSizeMB
	if mb <= 0 {
		mb = 1
	}
	return mb * 1024 * 1024
}

// validatePicture 校验大小与真实内容类型
func validatePicture(pictureType model.PictureType, data []byte) error {
	if len(data) > MaxPictureBytes() {
		return common.NewValidationError(fmt.Sprintf("图片大小不能超过 %dMB", MaxPictureBytes()/1024/1024))
	}
	if ok, msg := utils.ValidatePictureContent(data, pictureType); !ok {
		return common.NewValidationError(msg)
	}
	return nil
}

// Upload 先写图片记录，再写对象存储，最后创建发布。
// 存储失败时删除图片记录；补偿本身失败只记录日志。
func (s *PublicationService) Upload(ctx context.Context, ownerNickname string, pictureType model.PictureType, data []byte) (*model.Publication, error) {
	owner, err := findUserByNickname(s.userStore, ownerNickname)
	if err != nil {
		return nil, err
	}
	if err := validatePicture(pictureType, data); err != nil {
		return nil, err
	}

	picture := &model.Picture{Type: pictureType}
	if err := s.pictureStore.Create(picture); err != nil {
		metrics.RecordUpload("failed")
		return nil, internalError("保存图片失败", err)
	}

	name := storage.PublicationName(picture.ID)
	if err := s.objects.Save(ctx, name, data); err != nil {
		metrics.RecordStorageFailure("save")
		metrics.RecordUpload("failed")
		s.discardPicture(ctx, picture.ID, "")
		return nil, common.NewStorageError("保存图片失败", err)
	}

	publication := &model.Publication{
		OwnerID:   owner.ID,
		PictureID: picture.ID,
		State:     model.PublicationVisible,
	}
	if err := s.publicationStore.Create(publication); err != nil {
		metrics.RecordUpload("failed")
		s.discardPicture(ctx, picture.ID, name)
		return nil, internalError("创建发布失败", err)
	}

	metrics.RecordUpload("success")
	logger.Info("✅ 发布已上传", logger.Fields{"publication_id": publication.ID, "owner_id": owner.ID})
	return publication, nil
}

// discardPicture 上传失败后的补偿：删除对象（若已写入）与图片记录。
func (s *PublicationService) discardPicture(ctx context.Context, pictureID uint, objectName string) {
	if objectName != "" {
		if err := s.objects.Delete(ctx, objectName); err != nil {
			metrics.RecordStorageFailure("delete")
			logger.Error("❌ 补偿删除图片对象失败", logger.Fields{"object": objectName, "error": err.Error()})
		}
	}
	if err := s.pictureStore.Delete(pictureID); err != nil {
		logger.Error("❌ 补偿删除图片记录失败", logger.Fields{"picture_id": pictureID, "error": err.Error()})
	}
}

// GetPicture 读取 VISIBLE 发布的图片。
func (s *PublicationService) GetPicture(ctx context.Context, publicationID uint) (*PictureContent, error) {
	publication, err := s.findPublication(publicationID)
	if err != nil {
		return nil, err
	}
	if publication.State != model.PublicationVisible {
		return nil, common.NewForbiddenError("该发布已被封禁")
	}
	picture, err := s.pictureStore.FindByID(publication.PictureID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewNotFoundError("图片不存在")
		}
		return nil, internalError("读取图片失败", err)
	}

	data, err := s.objects.Get(ctx, storage.PublicationName(picture.ID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, common.NewNotFoundError("图片不存在")
		}
		metrics.RecordStorageFailure("get")
		return nil, common.NewStorageError("读取图片失败", err)
	}
	return &PictureContent{Type: picture.Type, Data: data}, nil
}

// SetReaction 设置或清除（next 为 nil）用户对发布的 Reaction，返回最终的 Reaction。
//
// Reaction 与 rating 在同一事务内更新；并发首次 Reaction 触发唯一约束冲突时按退避重试，
// 重试会读到已存在的行并走更新分支。
func (s *PublicationService) SetReaction(ctx context.Context, userNickname string, publicationID uint, next *model.ReactionType) (*model.ReactionType, error) {
	user, err := findUserByNickname(s.userStore, userNickname)
	if err != nil {
		return nil, err
	}

	var change *repo.ReactionChange
	operation := func() error {
		c, err := s.reactionStore.Apply(publicationID, user.ID, next, utils.RatingDelta)
		if err != nil {
			if repo.IsUniqueViolation(err) {
				metrics.RecordReactionRetry()
				return err
			}
			return backoff.Permanent(err)
		}
		change = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.reactionRetryWait
	policy.MaxInterval = 10 * s.reactionRetryWait
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, maxReactionAttempts-1), ctx)

	if err := backoff.Retry(operation, retry); err != nil {
		metrics.RecordReaction("failed")
		switch {
		case repo.IsNotFound(err):
			return nil, common.NewNotFoundError("发布不存在")
		case errors.Is(err, repo.ErrPublicationNotVisible):
			return nil, common.NewForbiddenError("该发布已被封禁")
		default:
			return nil, internalError("更新 Reaction 失败", err)
		}
	}

	metrics.RecordReaction("success")
	return change.Current, nil
}

// Ban 将发布置为 BANNED，不要求当前为 VISIBLE。
func (s *PublicationService) Ban(ctx context.Context, moderatorNickname string, publicationID uint) error {
	moderator, err := findUserByNickname(s.userStore, moderatorNickname)
	if err != nil {
		return err
	}
	if err := s.publicationStore.UpdateState(publicationID, model.PublicationBanned); err != nil {
		if repo.IsNotFound(err) {
			return common.NewNotFoundError("发布不存在")
		}
		return internalError("封禁发布失败", err)
	}
	logger.Info("⚠️ 发布已封禁", logger.Fields{"publication_id": publicationID, "moderator_id": moderator.ID})
	return nil
}

// Delete 仅发布者可删除。先删对象存储，失败则不动数据库。
func (s *PublicationService) Delete(ctx context.Context, ownerNickname string, publicationID uint) error {
	requester, err := findUserByNickname(s.userStore, ownerNickname)
	if err != nil {
		return err
	}
	publication, err := s.findPublication(publicationID)
	if err != nil {
		return err
	}
	if publication.OwnerID != requester.ID {
		return common.NewForbiddenError("只能删除自己的发布")
	}

	if err := s.objects.Delete(ctx, storage.PublicationName(publication.PictureID)); err != nil {
		metrics.RecordStorageFailure("delete")
		return common.NewStorageError("删除图片失败", err)
	}
	if err := s.publicationStore.DeleteWithPicture(publication); err != nil {
		return internalError("删除发布失败", err)
	}
	return nil
}

func (s *PublicationService) findPublication(id uint) (*model.Publication, error) {
	publication, err := s.publicationStore.FindByID(id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewNotFoundError("发布不存在")
		}
		return nil, internalError("查询发布失败", err)
	}
	return publication, nil
}

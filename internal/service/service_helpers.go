package service

import (
	"picstorm-server/internal/common"
	"picstorm-server/internal/model"
	repo "picstorm-server/internal/repository"
)

const maxPageSize = 100

// PageResult 分页结果；Last 表示之后没有更多数据。
type PageResult[T any] struct {
	Values []T  `json:"values"`
	Index  int  `json:"index"`
	Size   int  `json:"size"`
	Last   bool `json:"last"`
}

// validatePage index 从 0 开始，size 取值 [1, 100]。
func validatePage(index, size int) error {
	if index < 0 {
		return common.NewValidationError("页码不能小于 0")
	}
	if size < 1 || size > maxPageSize {
		return common.NewValidationError("每页数量必须在 1 到 100 之间")
	}
	return nil
}

// trimPage 查询时多取一条用于判断是否为最后一页。
func trimPage[T any](rows []T, size int) ([]T, bool) {
	if len(rows) > size {
		return rows[:size], false
	}
	return rows, true
}

func findUserByNickname(store repo.UserStore, nickname string) (*model.User, error) {
	user, err := store.FindByNickname(nickname)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewNotFoundError("用户不存在")
		}
		return nil, &common.ServiceError{Code: common.ErrorCodeInternal, Message: "查询用户失败", Cause: err}
	}
	return user, nil
}

func findUserByID(store repo.UserStore, id uint) (*model.User, error) {
	user, err := store.FindByID(id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, common.NewNotFoundError("用户不存在")
		}
		return nil, &common.ServiceError{Code: common.ErrorCodeInternal, Message: "查询用户失败", Cause: err}
	}
	return user, nil
}

// findOptionalViewer nickname 为空表示匿名访问。
func findOptionalViewer(store repo.UserStore, nickname string) (*model.User, error) {
	if nickname == "" {
		return nil, nil
	}
	return findUserByNickname(store, nickname)
}

func internalError(message string, cause error) error {
	return &common.ServiceError{Code: common.ErrorCodeInternal, Message: message, Cause: cause}
}

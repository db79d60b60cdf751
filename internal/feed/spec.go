// Package feed 把 Feed 过滤条件转换为与存储引擎无关的查询描述。
//
// Build 只产出条件；翻译成 SQL 的工作由 repository 完成，
// Matches 则在内存中按同一张规则表求值，两者必须保持一致。
package feed

import (
	"errors"
	"time"

	"picstorm-server/internal/model"
)

var (
	ErrMissingFilterUser = errors.New("SPECIFIED 过滤需要指定用户")
	ErrMissingViewer     = errors.New("SUBSCRIPTIONS 过滤需要登录用户")
	ErrUnknownConstraint = errors.New("未知的过滤条件")
)

// OwnerFilterKind 发布者过滤方式
type OwnerFilterKind int

const (
	OwnerAny OwnerFilterKind = iota
	// OwnerIs owner = UserID
	OwnerIs
	// OwnerSubscribedBy owner ∈ UserID 订阅的用户
	OwnerSubscribedBy
)

type OwnerFilter struct {
	Kind   OwnerFilterKind
	UserID uint
}

// Spec 描述 Feed 的过滤条件，所有条件以 AND 组合。
type Spec struct {
	// CreatedSince 非 nil 时要求 created_at >= CreatedSince
	CreatedSince *time.Time
	Owner        OwnerFilter
	State        model.PublicationState
}

// Build 根据过滤条件构造 Spec。
//
// viewerID 为当前用户（匿名为 nil），filterUserID 为 SPECIFIED 时的目标用户。
// 时间窗口以调用方传入的 now 为基准，便于测试。
func Build(now time.Time, date DateConstraint, user UserConstraint, viewerID, filterUserID *uint) (Spec, error) {
	spec := Spec{State: model.PublicationVisible}

	switch date {
	case DateNone, "":
	case DateDay:
		since := now.Add(-24 * time.Hour)
		spec.CreatedSince = &since
	case DateWeek:
		since := now.Add(-7 * 24 * time.Hour)
		spec.CreatedSince = &since
	default:
		return Spec{}, ErrUnknownConstraint
	}

	switch user {
	case UserAll, "":
	case UserSpecified:
		if filterUserID == nil {
			return Spec{}, ErrMissingFilterUser
		}
		spec.Owner = OwnerFilter{Kind: OwnerIs, UserID: *filterUserID}
	case UserSubscriptions:
		if viewerID == nil {
			return Spec{}, ErrMissingViewer
		}
		spec.Owner = OwnerFilter{Kind: OwnerSubscribedBy, UserID: *viewerID}
	default:
		return Spec{}, ErrUnknownConstraint
	}

	return spec, nil
}

// Matches 在内存中判断 publication 是否满足 Spec。
// subscribedTo 为 Owner.UserID 所订阅的用户集合，仅 OwnerSubscribedBy 时使用。
func (s Spec) Matches(p model.Publication, subscribedTo map[uint]bool) bool {
	if p.State != s.State {
		return false
	}
	if s.CreatedSince != nil && p.CreatedAt.Before(*s.CreatedSince) {
		return false
	}
	switch s.Owner.Kind {
	case OwnerIs:
		return p.OwnerID == s.Owner.UserID
	case OwnerSubscribedBy:
		return subscribedTo[p.OwnerID]
	}
	return true
}

// OrderKey 单个排序键
type OrderKey struct {
	Column string
	Desc   bool
}

// Order 返回排序键：可选的 rating 键在前，其后固定为 created_at DESC、id DESC。
func Order(sort SortConstraint) []OrderKey {
	keys := make([]OrderKey, 0, 3)
	switch sort {
	case SortLikedFirst:
		keys = append(keys, OrderKey{Column: "rating", Desc: true})
	case SortDislikedFirst:
		keys = append(keys, OrderKey{Column: "rating", Desc: false})
	}
	return append(keys,
		OrderKey{Column: "created_at", Desc: true},
		OrderKey{Column: "id", Desc: true},
	)
}

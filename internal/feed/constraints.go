package feed

import "strings"

// DateConstraint 按上传时间过滤
type DateConstraint string

const (
	DateNone DateConstraint = "NONE"
	DateDay  DateConstraint = "DAY"
	DateWeek DateConstraint = "WEEK"
)

// UserConstraint 按发布者过滤
type UserConstraint string

const (
	UserAll           UserConstraint = "ALL"
	UserSpecified     UserConstraint = "SPECIFIED"
	UserSubscriptions UserConstraint = "SUBSCRIPTIONS"
)

// SortConstraint 排序方式
type SortConstraint string

const (
	SortNone          SortConstraint = "NONE"
	SortLikedFirst    SortConstraint = "LIKED_FIRST"
	SortDislikedFirst SortConstraint = "DISLIKED_FIRST"
)

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseDateConstraint 空字符串视为 NONE。
func ParseDateConstraint(s string) (DateConstraint, bool) {
	switch c := DateConstraint(normalize(s)); c {
	case "":
		return DateNone, true
	case DateNone, DateDay, DateWeek:
		return c, true
	default:
		return "", false
	}
}

// ParseUserConstraint 空字符串视为 ALL。
func ParseUserConstraint(s string) (UserConstraint, bool) {
	switch c := UserConstraint(normalize(s)); c {
	case "":
		return UserAll, true
	case UserAll, UserSpecified, UserSubscriptions:
		return c, true
	default:
		return "", false
	}
}

// ParseSortConstraint 空字符串视为 NONE。
func ParseSortConstraint(s string) (SortConstraint, bool) {
	switch c := SortConstraint(normalize(s)); c {
	case "":
		return SortNone, true
	case SortNone, SortLikedFirst, SortDislikedFirst:
		return c, true
	default:
		return "", false
	}
}

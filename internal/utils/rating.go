package utils

import "picstorm-server/internal/model"

// RatingDelta 计算 Reaction 从 oldReaction 变为 newReaction 时 Publication.rating 的增量。
// nil 表示“没有 Reaction”。
//
//	nil     -> LIKE    : +1      nil     -> DISLIKE : -1
//	LIKE    -> nil     : -1      DISLIKE -> nil     : +1
//	LIKE    -> DISLIKE : -2      DISLIKE -> LIKE    : +2
//	X       -> X       :  0
func RatingDelta(oldReaction, newReaction *model.ReactionType) int64 {
	return reactionWeight(newReaction) - reactionWeight(oldReaction)
}

func reactionWeight(reaction *model.ReactionType) int64 {
	if reaction == nil {
		return 0
	}
	switch *reaction {
	case model.ReactionLike:
		return 1
	case model.ReactionDislike:
		return -1
	default:
		return 0
	}
}

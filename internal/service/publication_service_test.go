package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"picstorm-server/internal/common"
	"picstorm-server/internal/feed"
	"picstorm-server/internal/model"
	"picstorm-server/internal/repository"
	"picstorm-server/internal/storage"
	"picstorm-server/internal/testutils"

	"gorm.io/gorm"
)

// 测试内容：验证 Reaction 场景：LIKE→重复 LIKE→DISLIKE→清除 的 rating 变化。
func TestSetReaction_RatingScenario(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	alice := env.createUser(t, "alice", model.RoleOrdinary)
	p := env.upload(t, owner)
	ctx := context.Background()

	if got := env.rating(t, p.ID); got != 0 {
		t.Fatalf("期望初始 rating=0，实际为 %d", got)
	}

	steps := []struct {
		next *model.ReactionType
		want int64
	}{
		{next: reactionPtr(model.ReactionLike), want: 1},
		{next: reactionPtr(model.ReactionLike), want: 1},
		{next: reactionPtr(model.ReactionDislike), want: -1},
		{next: nil, want: 0},
	}
	for i, step := range steps {
		current, err := env.publications.SetReaction(ctx, alice.Nickname, p.ID, step.next)
		if err != nil {
			t.Fatalf("第 %d 步 SetReaction 错误: %v", i, err)
		}
		if (current == nil) != (step.next == nil) || (current != nil && *current != *step.next) {
			t.Fatalf("第 %d 步: 返回的 Reaction 与请求不一致", i)
		}
		if got := env.rating(t, p.ID); got != step.want {
			t.Fatalf("第 %d 步: 期望 rating=%d，实际为 %d", i, step.want, got)
		}
	}
}

// 测试内容：验证对被封禁发布设置 Reaction 返回 forbidden。
func TestSetReaction_BannedPublicationForbidden(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	p := env.createPublication(t, owner, model.PublicationBanned, time.Now())

	_, err := env.publications.SetReaction(context.Background(), owner.Nickname, p.ID, reactionPtr(model.ReactionLike))
	assertCode(t, err, common.ErrorCodeForbidden)

	_, err = env.publications.SetReaction(context.Background(), owner.Nickname, 9999, reactionPtr(model.ReactionLike))
	assertCode(t, err, common.ErrorCodeNotFound)
}

// 测试内容：验证多个用户并发点赞后 rating 等于点赞人数。
func TestSetReaction_ConcurrentUsers(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	p := env.upload(t, owner)

	const n = 8
	users := make([]*model.User, n)
	for i := range users {
		users[i] = env.createUser(t, "fan"+string(rune('a'+i)), model.RoleOrdinary)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range users {
		wg.Add(1)
		go func(nickname string) {
			defer wg.Done()
			_, err := env.publications.SetReaction(context.Background(), nickname, p.ID, reactionPtr(model.ReactionLike))
			errs <- err
		}(u.Nickname)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("并发 SetReaction 错误: %v", err)
		}
	}
	if got := env.rating(t, p.ID); got != n {
		t.Fatalf("期望 rating=%d，实际为 %d", n, got)
	}
}

// conflictOnceStore 第一次 Apply 返回唯一约束冲突，模拟并发首次 Reaction。
type conflictOnceStore struct {
	repository.ReactionStore
	mu       sync.Mutex
	conflict bool
	calls    int
}

func (s *conflictOnceStore) Apply(publicationID uint, userID uint, next *model.ReactionType, delta repository.RatingDeltaFunc) (*repository.ReactionChange, error) {
	s.mu.Lock()
	s.calls++
	conflict := s.conflict
	s.conflict = false
	s.mu.Unlock()
	if conflict {
		return nil, gorm.ErrDuplicatedKey
	}
	return s.ReactionStore.Apply(publicationID, userID, next, delta)
}

// 测试内容：验证唯一约束冲突后会重试并最终成功。
func TestSetReaction_RetriesOnUniqueViolation(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	p := env.upload(t, owner)

	store := &conflictOnceStore{ReactionStore: env.repos.Reaction, conflict: true}
	env.publications.reactionStore = store
	env.publications.reactionRetryWait = time.Millisecond

	if _, err := env.publications.SetReaction(context.Background(), owner.Nickname, p.ID, reactionPtr(model.ReactionDislike)); err != nil {
		t.Fatalf("SetReaction 错误: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("期望调用 2 次，实际为 %d", store.calls)
	}
	if got := env.rating(t, p.ID); got != -1 {
		t.Fatalf("期望 rating=-1，实际为 %d", got)
	}
}

// 测试内容：验证上传成功后对象写入 publication/<pictureId>。
func TestUpload_StoresObject(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	p := env.upload(t, owner)

	data, err := env.objects.Get(context.Background(), storage.PublicationName(p.PictureID))
	if err != nil {
		t.Fatalf("读取对象失败: %v", err)
	}
	if !bytes.Equal(data, testutils.MinimalPNG()) {
		t.Fatalf("期望对象内容与上传一致")
	}
	if p.State != model.PublicationVisible {
		t.Fatalf("期望新发布为 VISIBLE，实际为 %s", p.State)
	}
}

// 测试内容：验证存储写入失败时不残留图片与发布记录。
func TestUpload_StorageFailureLeavesNoRows(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	env.objects.setFailSave(true)

	_, err := env.publications.Upload(context.Background(), owner.Nickname, model.PictureTypePNG, testutils.MinimalPNG())
	assertCode(t, err, common.ErrorCodeInternal)

	if n := env.count(t, &model.Picture{}); n != 0 {
		t.Fatalf("期望无图片记录，实际为 %d", n)
	}
	if n := env.count(t, &model.Publication{}); n != 0 {
		t.Fatalf("期望无发布记录，实际为 %d", n)
	}
}

// 测试内容：验证上传内容与声明类型不符或超出大小限制时返回 validation。
func TestUpload_Validation(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	ctx := context.Background()

	_, err := env.publications.Upload(ctx, owner.Nickname, model.PictureTypeJPEG, testutils.MinimalPNG())
	assertCode(t, err, common.ErrorCodeValidation)

	big := append(testutils.MinimalPNG(), make([]byte, 1024*1024)...)
	_, err = env.publications.Upload(ctx, owner.Nickname, model.PictureTypePNG, big)
	assertCode(t, err, common.ErrorCodeValidation)

	_, err = env.publications.Upload(ctx, "ghost", model.PictureTypePNG, testutils.MinimalPNG())
	assertCode(t, err, common.ErrorCodeNotFound)
}

// 测试内容：验证匿名用户请求 SUBSCRIPTIONS 动态返回 forbidden。
func TestGetFeed_AnonymousSubscriptionsForbidden(t *testing.T) {
	env := setupTestEnv(t)
	for _, d := range []feed.DateConstraint{feed.DateNone, feed.DateDay, feed.DateWeek} {
		for _, s := range []feed.SortConstraint{feed.SortNone, feed.SortLikedFirst, feed.SortDislikedFirst} {
			page, err := env.publications.GetFeed(context.Background(), FeedRequest{
				Date: d, Sort: s, User: feed.UserSubscriptions, Size: 10,
			})
			if page != nil {
				t.Fatalf("期望不返回分页")
			}
			assertCode(t, err, common.ErrorCodeForbidden)
		}
	}
}

// 测试内容：验证 SPECIFIED 缺少用户返回 validation，用户不存在返回 not_found。
func TestGetFeed_SpecifiedUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.publications.GetFeed(ctx, FeedRequest{User: feed.UserSpecified, Size: 10})
	assertCode(t, err, common.ErrorCodeValidation)

	missing := uint(404)
	_, err = env.publications.GetFeed(ctx, FeedRequest{User: feed.UserSpecified, FilterUserID: &missing, Size: 10})
	assertCode(t, err, common.ErrorCodeNotFound)

	owner := env.createUser(t, "owner", model.RoleOrdinary)
	other := env.createUser(t, "other", model.RoleOrdinary)
	env.upload(t, owner)
	env.upload(t, other)
	page, err := env.publications.GetFeed(ctx, FeedRequest{User: feed.UserSpecified, FilterUserID: &owner.ID, Size: 10})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	if len(page.Values) != 1 || page.Values[0].OwnerID != owner.ID || page.Values[0].OwnerNickname != "owner" {
		t.Fatalf("期望仅返回 owner 的发布，实际为 %+v", page.Values)
	}
}

// 测试内容：验证 ALL 过滤下附带不存在的 filterUser 返回 not_found，存在时忽略该用户过滤。
func TestGetFeed_FilterUserResolvedForAnyConstraint(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	missing := uint(404)
	_, err := env.publications.GetFeed(ctx, FeedRequest{User: feed.UserAll, FilterUserID: &missing, Size: 10})
	assertCode(t, err, common.ErrorCodeNotFound)

	owner := env.createUser(t, "owner", model.RoleOrdinary)
	other := env.createUser(t, "other", model.RoleOrdinary)
	env.upload(t, owner)
	env.upload(t, other)
	page, err := env.publications.GetFeed(ctx, FeedRequest{User: feed.UserAll, FilterUserID: &owner.ID, Size: 10})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	if len(page.Values) != 2 {
		t.Fatalf("期望 ALL 返回 2 条发布，实际为 %d", len(page.Values))
	}
}

// 测试内容：验证 WEEK 过滤排除 8 天前的发布并包含 6 天前的发布。
func TestGetFeed_WeekWindow(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	now := time.Now()
	old := env.createPublication(t, owner, model.PublicationVisible, now.AddDate(0, 0, -8))
	recent := env.createPublication(t, owner, model.PublicationVisible, now.AddDate(0, 0, -6))

	page, err := env.publications.GetFeed(context.Background(), FeedRequest{Date: feed.DateWeek, Size: 10})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	if len(page.Values) != 1 || page.Values[0].PublicationID != recent.ID {
		t.Fatalf("期望仅返回 %d，实际为 %+v（排除 %d）", recent.ID, page.Values, old.ID)
	}
}

// 测试内容：验证订阅动态、被封禁发布过滤、当前用户 Reaction 标注。
func TestGetFeed_SubscriptionsAndUserReaction(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	viewer := env.createUser(t, "viewer", model.RoleOrdinary)
	star := env.createUser(t, "star", model.RoleOrdinary)
	stranger := env.createUser(t, "stranger", model.RoleOrdinary)

	liked := env.upload(t, star)
	plain := env.upload(t, star)
	env.createPublication(t, star, model.PublicationBanned, time.Now())
	env.upload(t, stranger)

	if _, err := env.subscriptions.Toggle(ctx, viewer.Nickname, star.ID); err != nil {
		t.Fatalf("Toggle 错误: %v", err)
	}
	if _, err := env.publications.SetReaction(ctx, viewer.Nickname, liked.ID, reactionPtr(model.ReactionLike)); err != nil {
		t.Fatalf("SetReaction 错误: %v", err)
	}

	page, err := env.publications.GetFeed(ctx, FeedRequest{
		ViewerNickname: viewer.Nickname,
		User:           feed.UserSubscriptions,
		Sort:           feed.SortLikedFirst,
		Size:           10,
	})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	if len(page.Values) != 2 || !page.Last {
		t.Fatalf("期望 2 条且为最后一页，实际为 %+v", page)
	}
	first, second := page.Values[0], page.Values[1]
	if first.PublicationID != liked.ID || first.Rating != 1 {
		t.Fatalf("期望点赞的发布排在首位，实际为 %+v", first)
	}
	if first.UserReaction == nil || *first.UserReaction != model.ReactionLike {
		t.Fatalf("期望标注 LIKE，实际为 %v", first.UserReaction)
	}
	if second.PublicationID != plain.ID || second.UserReaction != nil {
		t.Fatalf("期望第二条无 Reaction，实际为 %+v", second)
	}

	anonymous, err := env.publications.GetFeed(ctx, FeedRequest{Size: 10})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	for _, info := range anonymous.Values {
		if info.UserReaction != nil {
			t.Fatalf("期望匿名访问不带 Reaction")
		}
	}
	if len(anonymous.Values) != 3 {
		t.Fatalf("期望匿名 ALL 动态返回 3 条 VISIBLE 发布，实际为 %d", len(anonymous.Values))
	}
}

// 测试内容：验证分页的 last 标志与越界页。
func TestGetFeed_Pagination(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	now := time.Now()
	for i := 0; i < 5; i++ {
		env.createPublication(t, owner, model.PublicationVisible, now.Add(-time.Duration(i)*time.Minute))
	}
	ctx := context.Background()

	page, err := env.publications.GetFeed(ctx, FeedRequest{Index: 0, Size: 2})
	if err != nil {
		t.Fatalf("GetFeed 错误: %v", err)
	}
	if len(page.Values) != 2 || page.Last {
		t.Fatalf("期望第 0 页 2 条且非最后一页，实际为 %+v", page)
	}
	page, _ = env.publications.GetFeed(ctx, FeedRequest{Index: 2, Size: 2})
	if len(page.Values) != 1 || !page.Last {
		t.Fatalf("期望第 2 页 1 条且为最后一页，实际为 %+v", page)
	}
	page, _ = env.publications.GetFeed(ctx, FeedRequest{Index: 1, Size: 5})
	if len(page.Values) != 0 || !page.Last {
		t.Fatalf("期望越界页为空且为最后一页，实际为 %+v", page)
	}

	_, err = env.publications.GetFeed(ctx, FeedRequest{Index: -1, Size: 2})
	assertCode(t, err, common.ErrorCodeValidation)
	_, err = env.publications.GetFeed(ctx, FeedRequest{Index: 0, Size: 0})
	assertCode(t, err, common.ErrorCodeValidation)
}

// 测试内容：验证 GetPicture 对被封禁发布返回 forbidden，对正常发布返回内容。
func TestGetPicture(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	moderator := env.createUser(t, "moderator", model.RoleAdmin)
	p := env.upload(t, owner)
	ctx := context.Background()

	content, err := env.publications.GetPicture(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPicture 错误: %v", err)
	}
	if content.Type != model.PictureTypePNG || !bytes.Equal(content.Data, testutils.MinimalPNG()) {
		t.Fatalf("期望返回 PNG 内容")
	}

	if err := env.publications.Ban(ctx, moderator.Nickname, p.ID); err != nil {
		t.Fatalf("Ban 错误: %v", err)
	}
	_, err = env.publications.GetPicture(ctx, p.ID)
	assertCode(t, err, common.ErrorCodeForbidden)

	_, err = env.publications.GetPicture(ctx, 12345)
	assertCode(t, err, common.ErrorCodeNotFound)
}

// 测试内容：验证 Ban 可重复执行，且对 USER_BANNED 发布同样生效。
func TestBan_Idempotent(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	moderator := env.createUser(t, "moderator", model.RoleAdmin)
	p := env.createPublication(t, owner, model.PublicationUserBanned, time.Now())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := env.publications.Ban(ctx, moderator.Nickname, p.ID); err != nil {
			t.Fatalf("第 %d 次 Ban 错误: %v", i, err)
		}
	}
	var got model.Publication
	env.db.First(&got, p.ID)
	if got.State != model.PublicationBanned {
		t.Fatalf("期望 BANNED，实际为 %s", got.State)
	}

	assertCode(t, env.publications.Ban(ctx, "ghost", p.ID), common.ErrorCodeNotFound)
	assertCode(t, env.publications.Ban(ctx, moderator.Nickname, 999), common.ErrorCodeNotFound)
}

// 测试内容：验证只有发布者可以删除，删除后对象与记录均被移除。
func TestDelete_OwnerOnly(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	other := env.createUser(t, "other", model.RoleOrdinary)
	p := env.upload(t, owner)
	ctx := context.Background()
	if _, err := env.publications.SetReaction(ctx, other.Nickname, p.ID, reactionPtr(model.ReactionLike)); err != nil {
		t.Fatalf("SetReaction 错误: %v", err)
	}

	assertCode(t, env.publications.Delete(ctx, other.Nickname, p.ID), common.ErrorCodeForbidden)

	if err := env.publications.Delete(ctx, owner.Nickname, p.ID); err != nil {
		t.Fatalf("Delete 错误: %v", err)
	}
	if n := env.count(t, &model.Publication{}); n != 0 {
		t.Fatalf("期望发布被删除，实际剩余 %d", n)
	}
	if n := env.count(t, &model.Picture{}); n != 0 {
		t.Fatalf("期望图片记录被删除，实际剩余 %d", n)
	}
	if n := env.count(t, &model.Reaction{}); n != 0 {
		t.Fatalf("期望 Reaction 被删除，实际剩余 %d", n)
	}
	if _, err := env.objects.Get(ctx, storage.PublicationName(p.PictureID)); err == nil {
		t.Fatalf("期望对象被删除")
	}
}

// 测试内容：验证删除对象失败时不删除任何记录。
func TestDelete_StorageFailureIsFailClosed(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner", model.RoleOrdinary)
	p := env.upload(t, owner)
	env.objects.setFailDelete(true)

	err := env.publications.Delete(context.Background(), owner.Nickname, p.ID)
	assertCode(t, err, common.ErrorCodeInternal)

	if n := env.count(t, &model.Publication{}); n != 1 {
		t.Fatalf("期望发布保留，实际为 %d", n)
	}
	if n := env.count(t, &model.Picture{}); n != 1 {
		t.Fatalf("期望图片记录保留，实际为 %d", n)
	}
}

package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/myErrors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dependencies.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared&_fk=1", gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, repo UserRepository, username string) *entities.User {
	t.Helper()
	u := &entities.User{Name: username, Username: username, Email: username + "@x.com", PasswordHash: "h", Role: enums.RoleMember}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()
	ana := seedUser(t, repo, "ana")
	seedUser(t, repo, "bob")

	err := repo.Create(ctx, &entities.User{Name: "x", Username: "ana", Email: "other@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, myErrors.ErrRepoDuplicate)

	got, err := repo.GetByIdentifier(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)
	got, err = repo.GetByIdentifier(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, myErrors.ErrRepoNotFound)

	exists, err := repo.ExistsByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.UpdateProfile(ctx, ana.ID, "Ana", "bob", nil, nil)
	assert.ErrorIs(t, err, myErrors.ErrRepoDuplicate)

	course := "CS"
	require.NoError(t, repo.UpdateProfile(ctx, ana.ID, "Ana", "ana2", &course, nil))
	require.NoError(t, repo.UpdateProfile(ctx, ana.ID, "Ana", "ana2", nil, nil))
	got, err = repo.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana2", got.Username)
	assert.Nil(t, got.Course)
}

func TestFollowRepository(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	repo := NewFollowRepository(db)
	ctx := context.Background()
	ana := seedUser(t, users, "ana")
	bob := seedUser(t, users, "bob")

	require.NoError(t, repo.Create(ctx, ana.ID, bob.ID))
	assert.ErrorIs(t, repo.Create(ctx, ana.ID, bob.ID), myErrors.ErrRepoDuplicate)
	// 外键约束
	assert.ErrorIs(t, repo.Create(ctx, ana.ID, 999), myErrors.ErrRepoNotFound)
	// 自环被 check 约束拒绝
	assert.Error(t, repo.Create(ctx, ana.ID, ana.ID))

	view, err := repo.ProfileByID(ctx, bob.ID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.FollowersCount)
	assert.True(t, view.IsFollowingByMe)

	require.NoError(t, repo.Delete(ctx, ana.ID, bob.ID))
	assert.ErrorIs(t, repo.Delete(ctx, ana.ID, bob.ID), myErrors.ErrRepoNoRowsAffected)

	_, err = repo.ProfileByUsername(ctx, "ghost", 0)
	assert.ErrorIs(t, err, myErrors.ErrRepoNotFound)
}

func TestNoticeRepository_OwnerPredicate(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	boards := NewBoardRepository(db)
	repo := NewNoticeRepository(db, zap.NewNop())
	ctx := context.Background()
	ana := seedUser(t, users, "ana")
	bob := seedUser(t, users, "bob")

	board := &entities.NoticeBoard{ID: uuid.NewString(), Name: "CS", Slug: "cs"}
	require.NoError(t, boards.CreateBoard(ctx, board))
	assert.ErrorIs(t, boards.CreateBoard(ctx, &entities.NoticeBoard{ID: uuid.NewString(), Name: "x", Slug: "cs"}), myErrors.ErrRepoDuplicate)

	notice := &entities.Notice{ID: uuid.NewString(), BoardID: board.ID, UserID: ana.ID, Subject: "s", Content: "c"}
	require.NoError(t, repo.CreateNotice(ctx, notice))
	orphan := &entities.Notice{ID: uuid.NewString(), BoardID: uuid.NewString(), UserID: ana.ID, Subject: "s", Content: "c"}
	assert.ErrorIs(t, repo.CreateNotice(ctx, orphan), myErrors.ErrRepoNotFound)

	_, err := repo.UpdateOwnedNotice(ctx, notice.ID, bob.ID, "x", "y")
	assert.ErrorIs(t, err, myErrors.ErrRepoNoRowsAffected)
	_, err = repo.DeleteOwnedNotice(ctx, notice.ID, bob.ID)
	assert.ErrorIs(t, err, myErrors.ErrRepoNoRowsAffected)

	updated, err := repo.UpdateOwnedNotice(ctx, notice.ID, ana.ID, "s2", "c2")
	require.NoError(t, err)
	assert.Equal(t, "s2", updated.Subject)

	deleted, err := repo.DeleteOwnedNotice(ctx, notice.ID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, notice.ID, deleted.ID)
	_, err = repo.GetNoticeByID(ctx, notice.ID)
	assert.ErrorIs(t, err, myErrors.ErrRepoNotFound)
}

func TestEventRepository_Between(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	repo := NewEventRepository(db)
	ctx := context.Background()
	ana := seedUser(t, users, "ana")

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mk := func(title string, start time.Time, category enums.EventCategory, owner *uint64) {
		require.NoError(t, repo.Create(ctx, &entities.Event{
			Title: title, StartTime: start, EndTime: start.Add(time.Hour), Category: category, UserID: owner,
		}))
	}
	mk("before", from.Add(-time.Second), enums.EventAcademic, nil)
	mk("start", from, enums.EventAcademic, nil)
	mk("campus", from.Add(48*time.Hour), enums.EventCampus, nil)
	mk("private", from.Add(24*time.Hour), enums.EventUserPrivate, &ana.ID)
	mk("after", to, enums.EventAcademic, nil)

	public, err := repo.ListPublicBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "start", public[0].Title)
	assert.Equal(t, "campus", public[1].Title)

	owned, err := repo.ListOwnedBetween(ctx, ana.ID, from, to)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "private", owned[0].Title)
}

func TestNotificationRepository_DeleteOlderThan(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	ana := seedUser(t, users, "ana")
	bob := seedUser(t, users, "bob")

	now := time.Now().UTC()
	old := &entities.Notification{RecipientID: ana.ID, SenderID: bob.ID, Type: enums.NotificationFollow, CreatedAt: now.AddDate(0, 0, -100)}
	fresh := &entities.Notification{RecipientID: ana.ID, SenderID: bob.ID, Type: enums.NotificationFollow}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	items, err := repo.ListForRecipient(ctx, ana.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, fresh.ID, items[0].ID)
	assert.Equal(t, "bob", items[0].SenderUsername)
}

func TestToggleTables_CompositeKeyDuplicates(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	posts := NewPostRepository(db, zap.NewNop())
	boards := NewBoardRepository(db)
	ctx := context.Background()
	ana := seedUser(t, users, "ana")
	bob := seedUser(t, users, "bob")

	content := "hi"
	post := &entities.Post{UserID: ana.ID, Content: &content}
	require.NoError(t, posts.CreatePost(ctx, post))
	require.NoError(t, posts.CreateLike(ctx, post.ID, bob.ID))
	assert.ErrorIs(t, posts.CreateLike(ctx, post.ID, bob.ID), myErrors.ErrRepoDuplicate)
	assert.ErrorIs(t, posts.CreateLike(ctx, 999, bob.ID), myErrors.ErrRepoNotFound)

	board := &entities.NoticeBoard{ID: uuid.NewString(), Name: "CS", Slug: "cs"}
	require.NoError(t, boards.CreateBoard(ctx, board))
	require.NoError(t, boards.AddMember(ctx, board.ID, bob.ID))
	assert.ErrorIs(t, boards.AddMember(ctx, board.ID, bob.ID), myErrors.ErrRepoDuplicate)
	assert.ErrorIs(t, boards.AddMember(ctx, uuid.NewString(), bob.ID), myErrors.ErrRepoNotFound)
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	boards := NewBoardRepository(db)
	ctx := context.Background()
	seedUser(t, users, "a_b")
	seedUser(t, users, "axb")
	seedUser(t, users, "100%")

	items, err := users.Search(ctx, "a_b", 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a_b", items[0].Username)

	items, err = users.Search(ctx, "%", 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "100%", items[0].Username)

	items, err = users.Search(ctx, "!", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, boards.CreateBoard(ctx, &entities.NoticeBoard{ID: uuid.NewString(), Name: "Math_101", Slug: "math"}))
	require.NoError(t, boards.CreateBoard(ctx, &entities.NoticeBoard{ID: uuid.NewString(), Name: "Mathx101", Slug: "mathx"}))
	found, err := boards.SearchBoards(ctx, "h_1", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Math_101", found[0].Name)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/myErrors"
)

func TestFollow_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	bob := env.register(t, "Bob", "bob")
	ctx := context.Background()

	res, err := env.graph.Follow(ctx, ana.ID, "Bob")
	require.NoError(t, err)
	assert.True(t, res.Following)

	_, err = env.graph.Follow(ctx, ana.ID, "bob")
	requireKind(t, err, myErrors.ErrAlreadyExists, "already following this user")

	profile, err := env.graph.ProfileByUsername(ctx, "bob", ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Equal(t, int64(0), profile.FollowingCount)
	assert.True(t, profile.IsFollowingByMe)

	// 匿名查看
	profile, err = env.graph.ProfileByID(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.False(t, profile.IsFollowingByMe)

	res, err = env.graph.Unfollow(ctx, ana.ID, "bob")
	require.NoError(t, err)
	assert.False(t, res.Following)

	_, err = env.graph.Unfollow(ctx, ana.ID, "bob")
	requireKind(t, err, myErrors.ErrInvalidOperation, "you are not following this user")

	profile, err = env.graph.ProfileByUsername(ctx, "bob", ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.FollowersCount)
	assert.False(t, profile.IsFollowingByMe)
}

func TestFollow_Self(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")

	_, err := env.graph.Follow(context.Background(), ana.ID, "ana")
	requireKind(t, err, myErrors.ErrInvalidOperation, "you cannot follow yourself")

	var count int64
	require.NoError(t, env.db.Model(&entities.Follow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFollow_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	ctx := context.Background()

	_, err := env.graph.Follow(ctx, ana.ID, "ghost")
	requireKind(t, err, myErrors.ErrNotFound, "user not found")

	_, err = env.graph.Unfollow(ctx, ana.ID, "ghost")
	requireKind(t, err, myErrors.ErrNotFound, "user not found")

	_, err = env.graph.ProfileByUsername(ctx, "ghost", 0)
	requireKind(t, err, myErrors.ErrNotFound, "user not found")

	_, err = env.graph.ProfileByID(ctx, 404, 0)
	requireKind(t, err, myErrors.ErrNotFound, "user not found")
}

func TestFollow_WritesNotification(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	bob := env.register(t, "Bob", "bob")
	ctx := context.Background()

	_, err := env.graph.Follow(ctx, ana.ID, "bob")
	require.NoError(t, err)

	items, err := env.notifications.ListForRecipient(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, enums.NotificationFollow, items[0].Type)
	assert.Equal(t, ana.ID, items[0].SenderID)
	assert.Equal(t, "ana", items[0].SenderUsername)
	assert.Nil(t, items[0].PostID)
	assert.False(t, items[0].IsRead)
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	env.register(t, "Anabela", "bela")
	env.register(t, "Carlos", "carlos")
	ctx := context.Background()

	_, err := env.graph.Follow(ctx, ana.ID, "bela")
	require.NoError(t, err)

	items, err := env.graph.SearchUsers(ctx, "  ", ana.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	// 查看者本人不出现在结果中
	items, err = env.graph.SearchUsers(ctx, "ANA", ana.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bela", items[0].Username)
	assert.True(t, items[0].IsFollowingByMe)

	items, err = env.graph.SearchUsers(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.False(t, item.IsFollowingByMe)
	}
}

func TestSearchUsers_Limit(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []string{"st01", "st02", "st03", "st04", "st05", "st06", "st07", "st08", "st09", "st10", "st11", "st12"} {
		env.register(t, "Student "+u, u)
	}

	items, err := env.graph.SearchUsers(context.Background(), "st", 0)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

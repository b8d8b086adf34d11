package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/myErrors"
)

func strPtr(s string) *string { return &s }

func TestRegister_NormalizesIdentity(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     "  Ana Souza ",
		Email:    "Ana@X.com",
		Password: "secret1",
		Username: "Ana",
	})
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
	assert.Equal(t, "Ana Souza", profile.Name)
	assert.Equal(t, "ana@x.com", profile.Email)
	assert.Equal(t, "ana", profile.Username)
	assert.Nil(t, profile.AvatarURL)

	var stored entities.User
	require.NoError(t, env.db.First(&stored, profile.ID).Error)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.Equal(t, enums.RoleMember, stored.Role)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ana",
		Email:    "   ",
		Password: "secret1",
		Username: "ana",
	})
	requireKind(t, err, myErrors.ErrInvalidInput, "name, email, password and username are required")
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	env := newTestEnv(t)
	original := env.register(t, "Ana", "ana")
	ctx := context.Background()

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Name: "Other", Email: "ANA@x.com", Password: "pw", Username: "other",
	})
	requireKind(t, err, myErrors.ErrDuplicateIdentity, "email already exists")

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Name: "Other", Email: "other@x.com", Password: "pw", Username: "ANA",
	})
	requireKind(t, err, myErrors.ErrDuplicateIdentity, "username already exists")

	// 原用户不受影响
	var count int64
	require.NoError(t, env.db.Model(&entities.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	var stored entities.User
	require.NoError(t, env.db.First(&stored, original.ID).Error)
	assert.Equal(t, "Ana", stored.Name)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "Ana", "ana")
	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "ANA", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, resp.User.ID)

		id, err := env.tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, id.ID)
		assert.Equal(t, "ana", id.Snapshot.Username)
		assert.Equal(t, "ana@x.com", id.Snapshot.Email)
		assert.Equal(t, "Ana", id.Snapshot.Name)
	})

	t.Run("by email", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "ana@x.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "ana", Password: "nope"})
		requireKind(t, err, myErrors.ErrInvalidCredential, "incorrect password")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "ghost", Password: "secret1"})
		requireKind(t, err, myErrors.ErrNotFound, "user not found")
	})
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	bob := env.register(t, "Bob", "bob")
	ctx := context.Background()

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := env.auth.UpdateProfile(ctx, ana.ID, bob.ID, &dto.UpdateProfileRequest{Name: "x", Username: "x"})
		requireKind(t, err, myErrors.ErrForbidden, "access denied")

		var stored entities.User
		require.NoError(t, env.db.First(&stored, ana.ID).Error)
		assert.Equal(t, "ana", stored.Username)
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := env.auth.UpdateProfile(ctx, ana.ID, ana.ID, &dto.UpdateProfileRequest{Name: "Ana", Username: "BOB"})
		requireKind(t, err, myErrors.ErrDuplicateIdentity, "username already exists")
	})

	t.Run("success", func(t *testing.T) {
		updated, err := env.auth.UpdateProfile(ctx, ana.ID, ana.ID, &dto.UpdateProfileRequest{
			Name:     "Ana Maria",
			Username: "AnaM",
			Course:   strPtr("Computer Science"),
			Bio:      strPtr("hello"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, "anam", updated.Username)
		require.NotNil(t, updated.Course)
		assert.Equal(t, "Computer Science", *updated.Course)
		assert.Equal(t, "ana@x.com", updated.Email)
	})

	t.Run("unchanged values still succeed", func(t *testing.T) {
		_, err := env.auth.UpdateProfile(ctx, ana.ID, ana.ID, &dto.UpdateProfileRequest{
			Name:     "Ana Maria",
			Username: "anam",
			Course:   strPtr("Computer Science"),
			Bio:      strPtr("hello"),
		})
		require.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := env.auth.UpdateProfile(ctx, 999, 999, &dto.UpdateProfileRequest{Name: "x", Username: "x"})
		requireKind(t, err, myErrors.ErrNotFound, "user not found")
	})
}

func TestSetAvatar_ReplacesPreviousFile(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	ctx := context.Background()

	_, err := env.auth.SetAvatar(ctx, ana.ID, nil)
	requireKind(t, err, myErrors.ErrInvalidInput, "no file uploaded")

	first, err := env.auth.SetAvatar(ctx, ana.ID, textFile("me.PNG", "image/png", "first"))
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)
	assert.Regexp(t, `^/uploads/avatars/\d{8}/[0-9a-f-]{36}\.png$`, *first.AvatarURL)
	assert.True(t, env.store.has(*first.AvatarURL))

	second, err := env.auth.SetAvatar(ctx, ana.ID, textFile("me2.jpg", "image/jpeg", "second"))
	require.NoError(t, err)
	assert.True(t, env.store.has(*second.AvatarURL))
	assert.False(t, env.store.has(*first.AvatarURL))
	assert.Equal(t, 1, env.store.count())

	var stored entities.User
	require.NoError(t, env.db.First(&stored, ana.ID).Error)
	assert.Equal(t, second.AvatarURL, stored.AvatarURL)
}

func TestSetAvatar_StoreFailureLeavesProfile(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	env.store.failOn = "avatars/"

	_, err := env.auth.SetAvatar(context.Background(), ana.ID, textFile("me.png", "image/png", "x"))
	require.Error(t, err)
	assert.Empty(t, myErrors.PublicMessage(err))

	var stored entities.User
	require.NoError(t, env.db.First(&stored, ana.ID).Error)
	assert.Nil(t, stored.AvatarURL)
}

func TestSetRoleAndRoleOf(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana")
	ctx := context.Background()

	role, err := env.auth.RoleOf(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleMember, role)

	_, err = env.auth.SetRole(ctx, "ana", enums.Role("owner"))
	requireKind(t, err, myErrors.ErrInvalidInput, "invalid role")

	_, err = env.auth.SetRole(ctx, "ghost", enums.RoleAdmin)
	requireKind(t, err, myErrors.ErrNotFound, "user not found")

	_, err = env.auth.SetRole(ctx, "ANA", enums.RoleAdmin)
	require.NoError(t, err)
	role, err = env.auth.RoleOf(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleAdmin, role)

	_, err = env.auth.RoleOf(ctx, 12345)
	requireKind(t, err, myErrors.ErrNotFound, "user not found")
}

package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/security"
)

// memStore 内存版 FileStore
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Save(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	if err := dependencies.ValidateObjectKey(key); err != nil {
		return err
	}
	if m.failOn != "" && strings.HasPrefix(key, m.failOn) {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) Open(_ context.Context, key string) (*dependencies.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, dependencies.ErrObjectNotFound
	}
	return &dependencies.StoredObject{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: m.types[key],
		Size:        int64(len(data)),
	}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// has 引用对应的对象是否还在
func (m *memStore) has(ref string) bool {
	key, ok := dependencies.KeyFromRef(ref)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.objects[key]
	return exists
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testEnv struct {
	db            *gorm.DB
	store         *memStore
	tokens        *security.TokenIssuer
	notifications gormrepo.NotificationRepository
	auth          AuthService
	graph         SocialGraphService
	posts         PostService
	feeds         FeedService
	boards        BoardService
	calendar      CalendarService
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1"
	db, err := dependencies.OpenSQLite(dsn, gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newTestEnv 通知直接写库，便于断言
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	logger := zap.NewNop()
	store := newMemStore()
	tokens := security.NewTokenIssuer("test-secret", 0, "campus-test")

	users := gormrepo.NewUserRepository(db, logger)
	notifications := gormrepo.NewNotificationRepository(db)
	sink := NewNotificationSink(notifications, nil, logger)

	return &testEnv{
		db:            db,
		store:         store,
		tokens:        tokens,
		notifications: notifications,
		auth:          NewAuthService(users, security.NewBcryptHasher(bcrypt.MinCost), tokens, store, logger),
		graph:         NewSocialGraphService(users, gormrepo.NewFollowRepository(db), sink, logger),
		posts:         NewPostService(gormrepo.NewPostRepository(db, logger), store, sink, logger),
		feeds:         NewFeedService(gormrepo.NewFeedRepository(db), users, logger),
		boards:        NewBoardService(gormrepo.NewBoardRepository(db), gormrepo.NewNoticeRepository(db, logger), store, logger),
		calendar:      NewCalendarService(gormrepo.NewEventRepository(db), logger),
	}
}

func (e *testEnv) register(t *testing.T, name, username string) *vo.UserProfile {
	t.Helper()
	profile, err := e.auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     name,
		Email:    username + "@x.com",
		Password: "secret1",
		Username: username,
	})
	require.NoError(t, err)
	return profile
}

// identity 模拟登录后得到的调用者身份
func (e *testEnv) identity(t *testing.T, username string) *security.Identity {
	t.Helper()
	resp, err := e.auth.Login(context.Background(), &dto.LoginRequest{Identifier: username, Password: "secret1"})
	require.NoError(t, err)
	id, err := e.tokens.Verify(resp.Token)
	require.NoError(t, err)
	return id
}

func textFile(name, contentType, body string) *dto.FileUpload {
	return &dto.FileUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Reader:      strings.NewReader(body),
	}
}

// requireKind 断言错误的种类与对外消息
func requireKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	if message != "" {
		require.Equal(t, message, myErrors.PublicMessage(err))
	}
}

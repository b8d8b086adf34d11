package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/controller"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/security"
	"github.com/Xushengqwer/campus_service/service"
)

const internalKey = "internal-test-key"

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

// newTestServer 与 main 相同的装配方式，数据库为内存 SQLite，文件写入临时目录
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dependencies.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared&_fk=1", gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store, err := dependencies.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	tokens := security.NewTokenIssuer("router-test-secret", 0, constant.ServiceName)
	userRepo := gormrepo.NewUserRepository(db, logger)
	notificationRepo := gormrepo.NewNotificationRepository(db)
	sink := service.NewNotificationSink(notificationRepo, nil, logger)

	authService := service.NewAuthService(userRepo, security.NewBcryptHasher(bcrypt.MinCost), tokens, store, logger)
	graphService := service.NewSocialGraphService(userRepo, gormrepo.NewFollowRepository(db), sink, logger)
	postService := service.NewPostService(gormrepo.NewPostRepository(db, logger), store, sink, logger)
	feedService := service.NewFeedService(gormrepo.NewFeedRepository(db), userRepo, logger)
	boardService := service.NewBoardService(gormrepo.NewBoardRepository(db), gormrepo.NewNoticeRepository(db, logger), store, logger)
	calendarService := service.NewCalendarService(gormrepo.NewEventRepository(db), logger)
	const maxUpload = 1 << 20

	ctrls := &Controllers{
		Auth:         controller.NewAuthController(authService, maxUpload, logger),
		Social:       controller.NewSocialController(graphService, logger),
		Post:         controller.NewPostController(postService, feedService, maxUpload, logger),
		Board:        controller.NewBoardController(boardService, maxUpload, logger),
		Event:        controller.NewEventController(calendarService, logger),
		Internal:     controller.NewInternalController(calendarService, authService, logger),
		Notification: controller.NewNotificationController(service.NewNotificationService(notificationRepo), logger),
		Uploads:      controller.NewUploadsController(store, logger),
	}
	engine := gin.New()
	RegisterRoutes(engine, ctrls, Options{
		Gates:             NewGates(tokens, authService, logger),
		InternalGate:      middleware.InternalOnly(internalKey),
		NotificationsRead: true,
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, payload interface{}, headers ...string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, token, body, "application/json", headers...)
}

type formFile struct {
	field, filename, contentType, content string
}

func (s *testServer) multipart(path, token string, fields map[string]string, file *formFile) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.field, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(s.t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do(http.MethodPost, path, token, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) signup(name, username string) (uint64, string) {
	w := s.json(http.MethodPost, "/register", "", gin.H{
		"name": name, "email": username + "@x.com", "password": "secret1", "username": username,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	w = s.json(http.MethodPost, "/login", "", gin.H{"identifier": username, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}](s.t, w)
	return resp.User.ID, resp.Token
}

func TestScenario_PostsLikesFollows(t *testing.T) {
	s := newTestServer(t)
	anaID, ana := s.signup("Ana", "ana")
	_, bob := s.signup("Bob", "b")

	w := s.json(http.MethodPost, "/register", "", gin.H{
		"name": "Other", "email": "ANA@x.com", "password": "pw", "username": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"email already exists"}`, w.Body.String())

	w = s.multipart("/posts", "", map[string]string{"content": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.multipart("/posts", ana, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"post must have content or an image"}`, w.Body.String())

	w = s.multipart("/posts", ana, map[string]string{"content": "hello campus"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[struct {
		ID     uint64 `json:"id"`
		UserID uint64 `json:"user_id"`
	}](t, w)
	assert.Equal(t, anaID, post.UserID)

	w = s.do(http.MethodPost, fmt.Sprintf("/posts/%d/toggle-like", post.ID), bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true}`, w.Body.String())

	type feedItem struct {
		ID             uint64 `json:"id"`
		TotalLikes     int64  `json:"total_likes"`
		LikedByMe      bool   `json:"liked_by_me"`
		AuthorUsername string `json:"author_username"`
	}
	w = s.do(http.MethodGet, "/posts", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[[]feedItem](t, w)
	require.Len(t, feed, 1)
	assert.Equal(t, int64(1), feed[0].TotalLikes)
	assert.True(t, feed[0].LikedByMe)
	assert.Equal(t, "ana", feed[0].AuthorUsername)

	// 匿名也能看推荐流
	w = s.do(http.MethodGet, "/posts", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[[]feedItem](t, w)[0].LikedByMe)

	w = s.do(http.MethodGet, "/feed/following", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodPost, "/users/ana/follow", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"following":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/users/ana/follow", bob, nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/users/b/follow", bob, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"you cannot follow yourself"}`, w.Body.String())

	w = s.do(http.MethodGet, "/feed/following", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]feedItem](t, w), 1)

	w = s.do(http.MethodGet, "/profile/ana", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[struct {
		FollowersCount  int64 `json:"followers_count"`
		IsFollowingByMe bool  `json:"is_following_by_me"`
	}](t, w)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.True(t, profile.IsFollowingByMe)

	w = s.do(http.MethodGet, fmt.Sprintf("/profile/id/%d", anaID), "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/posts/user/ana", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]feedItem](t, w), 1)

	w = s.do(http.MethodGet, "/posts/user/ghost", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())

	w = s.json(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), bob, gin.H{"content": "nice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "b", decode[struct {
		AuthorUsername string `json:"author_username"`
	}](t, w).AuthorUsername)

	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments", post.ID), bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, w), 1)

	w = s.do(http.MethodGet, "/posts/abc/comments", bob, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), bob, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"post not found or access denied"}`, w.Body.String())

	w = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), ana, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodGet, "/notifications", ana, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	// 点赞和评论通知随帖子删除，只剩关注通知
	notes := decode[[]struct {
		Type string `json:"type"`
	}](t, w)
	require.Len(t, notes, 1)
	assert.Equal(t, "follow", notes[0].Type)
}

func TestScenario_ProfileAndAvatar(t *testing.T) {
	s := newTestServer(t)
	anaID, ana := s.signup("Ana", "ana")
	bobID, _ := s.signup("Bob", "bob")

	w := s.json(http.MethodPut, fmt.Sprintf("/profile/%d", bobID), ana, gin.H{"name": "x", "username": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, w.Body.String())

	w = s.json(http.MethodPut, fmt.Sprintf("/profile/%d", anaID), ana, gin.H{"name": "Ana", "username": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.json(http.MethodPut, fmt.Sprintf("/profile/%d", anaID), ana, gin.H{"name": "Ana M", "username": "anam", "course": "CS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "anam", decode[struct {
		Username string `json:"username"`
	}](t, w).Username)

	w = s.multipart("/profile/upload-avatar", ana, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"no file uploaded"}`, w.Body.String())

	w = s.multipart("/profile/upload-avatar", ana, nil, &formFile{"avatar", "me.png", "image/png", "png-bytes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	avatar := decode[struct {
		AvatarURL string `json:"avatar_url"`
	}](t, w).AvatarURL
	require.True(t, strings.HasPrefix(avatar, "/uploads/avatars/"), avatar)

	w = s.do(http.MethodGet, avatar, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = s.do(http.MethodGet, "/uploads/avatars/missing.png", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenario_BoardsAndNotices(t *testing.T) {
	s := newTestServer(t)
	_, ana := s.signup("Ana", "ana")
	_, bob := s.signup("Bob", "bob")

	w := s.json(http.MethodPost, "/boards", bob, gin.H{"name": "CS", "slug": "cs"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"admin role required"}`, w.Body.String())

	w = s.json(http.MethodPost, "/temp/users/ana/role", "", gin.H{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.json(http.MethodPost, "/temp/users/ana/role", "", gin.H{"role": "admin"}, constant.InternalKeyHeader, internalKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPost, "/boards", ana, gin.H{"name": "Computer Science", "slug": "cs", "description": "CS students"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	board := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = s.json(http.MethodPost, "/boards", ana, gin.H{"name": "Dup", "slug": "CS"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/boards", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/boards/"+board.ID+"/toggle-join", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"joined":true}`, w.Body.String())

	w = s.multipart("/boards/"+board.ID+"/notices", bob,
		map[string]string{"content": "Exam moved"},
		&formFile{"file", "schedule.pdf", "application/pdf", "%PDF-1.4"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	notice := decode[struct {
		ID       string `json:"id"`
		Subject  string `json:"subject"`
		FileURL  string `json:"file_url"`
		FileType string `json:"file_type"`
	}](t, w)
	assert.Equal(t, "Geral", notice.Subject)
	assert.Equal(t, "pdf", notice.FileType)

	w = s.do(http.MethodGet, notice.FileURL, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = s.do(http.MethodGet, "/notices/feed", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[[]struct {
		ID        string `json:"id"`
		BoardName string `json:"board_name"`
		AuthorID  uint64 `json:"author_id"`
	}](t, w)
	require.Len(t, feed, 1)
	assert.Equal(t, "Computer Science", feed[0].BoardName)

	w = s.do(http.MethodGet, "/notices/feed", ana, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.json(http.MethodPut, "/notices/"+notice.ID, ana, gin.H{"subject": "x", "content": "y"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"notice not found or access denied"}`, w.Body.String())

	w = s.json(http.MethodPut, "/notices/"+notice.ID, bob, gin.H{"subject": "Exams", "content": "Exam moved to Friday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/search/boards?q=science", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]struct {
		IsMember bool `json:"is_member"`
	}](t, w)
	require.Len(t, found, 1)
	assert.True(t, found[0].IsMember)

	w = s.do(http.MethodDelete, "/notices/"+notice.ID, bob, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, notice.FileURL, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenario_Calendar(t *testing.T) {
	s := newTestServer(t)
	_, ana := s.signup("Ana", "ana")

	event := func(title, start string) gin.H {
		return gin.H{"title": title, "start_time": start, "end_time": start}
	}

	w := s.json(http.MethodPost, "/temp/create-academic-event", "", event("exam", "2025-03-01T00:00:00Z"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, e := range []gin.H{
		event("february", "2025-02-28T23:59:59Z"),
		event("march start", "2025-03-01T00:00:00Z"),
		event("april", "2025-04-01T00:00:00Z"),
	} {
		w = s.json(http.MethodPost, "/temp/create-academic-event", "", e, constant.InternalKeyHeader, internalKey)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.json(http.MethodPost, "/events", ana, event("study", "2025-03-10T10:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.json(http.MethodPost, "/events", ana, gin.H{"title": "bad", "start_time": "2025-03-10T10:00:00Z", "end_time": "2025-03-10T09:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"end_time must not be before start_time"}`, w.Body.String())

	type eventItem struct {
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	w = s.do(http.MethodGet, "/events?month=3&year=2025", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]eventItem](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, "march start", events[0].Title)
	assert.Equal(t, "ACADEMIC", events[0].Category)

	w = s.do(http.MethodGet, "/events/mine?month=3&year=2025", ana, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]eventItem](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, "USER_PRIVATE", mine[0].Category)

	w = s.do(http.MethodGet, "/events?year=2025", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/events?month=13&year=2025", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploads_ActiveContentIsDownloaded(t *testing.T) {
	s := newTestServer(t)
	_, ana := s.signup("Ana", "ana")
	w := s.json(http.MethodPost, "/temp/users/ana/role", "", gin.H{"role": "admin"}, constant.InternalKeyHeader, internalKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.json(http.MethodPost, "/boards", ana, gin.H{"name": "CS", "slug": "cs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	board := decode[struct {
		ID string `json:"id"`
	}](t, w)
	w = s.do(http.MethodPost, "/boards/"+board.ID+"/toggle-join", ana, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	for _, name := range []string{"page.html", "logo.svg"} {
		w = s.multipart("/boards/"+board.ID+"/notices", ana,
			map[string]string{"content": "see attached"},
			&formFile{"file", name, "text/plain", "<script>alert(1)</script>"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		notice := decode[struct {
			FileURL string `json:"file_url"`
		}](t, w)

		w = s.do(http.MethodGet, notice.FileURL, "", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), name)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"), name)
	}
}

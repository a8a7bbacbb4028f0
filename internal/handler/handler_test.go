package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"biochat/internal/app/chat"
	"biochat/internal/app/post"
	"biochat/internal/app/store"
	"biochat/internal/app/user"
	"biochat/internal/configs"
	"biochat/internal/pkg/auth/jwt"
	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/limiter"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/pow"
)

const testSecret = "test-secret"

type personaMinter struct {
	n atomic.Int32
}

func (m *personaMinter) Generate(context.Context) string {
	return fmt.Sprintf("Persona %d", m.n.Add(1))
}

type echoReplies struct{}

func (echoReplies) Generate(_ context.Context, _ chat.Topic, _ []chat.Message, _ string) string {
	return "same here"
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func openLimiters() *Limiters {
	return &Limiters{
		Login:     limiter.NewIPRateLimiter(rate.Inf, 1),
		Challenge: limiter.NewIPRateLimiter(rate.Inf, 1),
		Stream:    limiter.NewIPRateLimiter(rate.Inf, 1),
	}
}

func newTestDeps(t *testing.T, difficulty int, limiters *Limiters) *AppDeps {
	t.Helper()
	logx.SetOutput(io.Discard, zerolog.Disabled)

	hub := chat.NewHub()
	st := store.New(&personaMinter{}, echoReplies{}, store.Options{
		AdminBypass:   true,
		ReplyDelayMin: 5 * time.Millisecond,
		ReplyDelayMax: 10 * time.Millisecond,
		Notifier:      hub,
	})
	pm := pow.NewManager(difficulty)

	t.Cleanup(func() {
		hub.Shutdown()
		st.Shutdown()
		pm.Stop()
		limiters.Stop()
	})

	return &AppDeps{
		Store: st,
		Hub:   hub,
		Config: &configs.AppConfig{
			Environment:    configs.EnvDevelopment,
			JWTSecret:      testSecret,
			AdminBypass:    true,
			AllowedOrigins: []string{},
		},
		PoW:      pm,
		Limiters: limiters,
	}
}

func newTestRouter(t *testing.T) (http.Handler, *AppDeps) {
	deps := newTestDeps(t, 0, openLimiters())
	return Router(deps), deps
}

func call(t *testing.T, h http.Handler, method, path, token string, body any, headers ...string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func login(t *testing.T, h http.Handler, realName, college string) IdentityResponse {
	t.Helper()
	status, env := call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: realName, College: college})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 0, env.Code, env.Message)
	return decode[IdentityResponse](t, env)
}

func tokenFor(t *testing.T, id string, role user.Role) string {
	t.Helper()
	token, err := jwt.GenerateToken(&jwt.Payload{ID: id, Role: string(role)}, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func assertError(t *testing.T, status int, env envelope, code int) {
	t.Helper()
	want := errs.NewError(code)
	assert.Equal(t, want.Code, env.Code)
	assert.Equal(t, want.Status, status)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	status, env := call(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, env.Code)
}

func TestLogin_MintsPersona(t *testing.T) {
	h, _ := newTestRouter(t)

	out := login(t, h, "Alice", "UCLA")

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Persona 1", out.User.Username)
	assert.Equal(t, "UCLA", out.User.College)
	assert.Empty(t, out.User.RealName, "real name must not leave the server")
	assert.Equal(t, user.RoleUser, out.User.Role)
	assert.Equal(t, store.ViewHome, out.View)

	status, env := call(t, h, http.MethodGet, "/api/me", out.Token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[IdentityResponse](t, env)
	assert.Equal(t, out.User.ID, me.User.ID)
}

func TestLogin_AdminBypass(t *testing.T) {
	h, _ := newTestRouter(t)

	out := login(t, h, "admin", "SYSTEM")

	assert.Equal(t, user.AdminID, out.User.ID)
	assert.Equal(t, user.RoleAdmin, out.User.Role)
}

func TestLogin_Rejections(t *testing.T) {
	h, _ := newTestRouter(t)

	status, env := call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: "  ", College: "UCLA"})
	assertError(t, status, env, errs.ErrInvalidCredentials)

	status, env = call(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"realName": "A", "college": "B", "extra": "x"})
	assertError(t, status, env, errs.ErrInvalidJSONFormat)
}

func TestLogin_RateLimited(t *testing.T) {
	deps := newTestDeps(t, 0, NewLimiters())
	h := Router(deps)

	for i := 0; i < LoginBurst; i++ {
		login(t, h, "Alice", "UCLA")
	}

	status, env := call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: "Alice", College: "UCLA"})
	assertError(t, status, env, errs.ErrRateLimitExceeded)
}

func TestLogin_ProofOfWork(t *testing.T) {
	deps := newTestDeps(t, 1, openLimiters())
	h := Router(deps)

	status, env := call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: "Alice", College: "UCLA"})
	assertError(t, status, env, errs.ErrPowChallengeRequired)

	_, env = call(t, h, http.MethodGet, "/api/auth/challenge", "", nil)
	challenge := decode[pow.Challenge](t, env)
	require.Equal(t, 1, challenge.Difficulty)

	solve := func(nonce string) string {
		counter := 0
		for !pow.Meets(nonce, strconv.Itoa(counter), challenge.Difficulty) {
			counter++
		}
		return strconv.Itoa(counter)
	}

	status, env = call(t, h, http.MethodPost, "/api/auth/verify", "", VerifyRequest{Nonce: "unissued", Counter: solve("unissued")})
	assertError(t, status, env, errs.ErrPowChallengeInvalid)

	_, env = call(t, h, http.MethodPost, "/api/auth/verify", "", VerifyRequest{Nonce: challenge.Nonce, Counter: solve(challenge.Nonce)})
	require.Equal(t, 0, env.Code, env.Message)
	proof := decode[map[string]string](t, env)["token"]
	require.NotEmpty(t, proof)

	status, env = call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: "Alice", College: "UCLA"}, pow.TokenHeaderKey, proof)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, env.Code)

	status, env = call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{RealName: "Bob", College: "UCLA"}, pow.TokenHeaderKey, proof)
	assertError(t, status, env, errs.ErrPowChallengeRequired)
}

func TestAnonymousAccess(t *testing.T) {
	h, _ := newTestRouter(t)

	status, env := call(t, h, http.MethodGet, "/api/posts", "", nil)
	assertError(t, status, env, errs.ErrUnauthorized)

	status, env = call(t, h, http.MethodGet, "/api/posts", "not-a-jwt", nil)
	assertError(t, status, env, errs.ErrUnauthorized)

	_, env = call(t, h, http.MethodGet, "/api/view?page=admin", "", nil)
	assert.Equal(t, store.ViewLanding, decode[ViewResponse](t, env).View)
}

func TestView_Resolution(t *testing.T) {
	h, _ := newTestRouter(t)
	member := login(t, h, "Alice", "UCLA").Token
	admin := login(t, h, "admin", "system").Token

	tests := []struct {
		token string
		page  string
		want  store.View
	}{
		{member, "home", store.ViewHome},
		{member, "chat", store.ViewChat},
		{member, "admin", store.ViewHome},
		{member, "nonsense", store.ViewHome},
		{admin, "admin", store.ViewAdmin},
	}

	for _, tt := range tests {
		_, env := call(t, h, http.MethodGet, "/api/view?page="+tt.page, tt.token, nil)
		got := decode[ViewResponse](t, env)
		assert.Equal(t, tt.want, got.View, tt.page)
		assert.Empty(t, got.Notice)
	}
}

func TestBannedUserNavigation(t *testing.T) {
	h, _ := newTestRouter(t)
	banned := tokenFor(t, "u4", user.RoleUser)

	for _, page := range []string{"landing", "home", "chat", "admin", "restricted"} {
		_, env := call(t, h, http.MethodGet, "/api/view?page="+page, banned, nil)
		got := decode[ViewResponse](t, env)
		assert.Equal(t, store.ViewRestricted, got.View, page)
		assert.Equal(t, store.RestrictedNotice, got.Notice)
	}

	status, env := call(t, h, http.MethodGet, "/api/me", banned, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, store.ViewRestricted, decode[IdentityResponse](t, env).View)

	gated := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/posts", nil},
		{http.MethodPost, "/api/posts", CreatePostRequest{Content: "hello"}},
		{http.MethodGet, "/api/chat/topics", nil},
		{http.MethodPost, "/api/chat/session", StartSessionRequest{Topic: string(chat.TopicExams)}},
		{http.MethodPost, "/api/chat/messages", SendMessageRequest{Text: "hi"}},
		{http.MethodGet, "/api/admin/users", nil},
	}

	for _, g := range gated {
		status, env := call(t, h, g.method, g.path, banned, g.body)
		assertError(t, status, env, errs.ErrAccountRestricted)
	}
}

func TestAdmin_ListAndBan(t *testing.T) {
	h, deps := newTestRouter(t)
	admin := login(t, h, "admin", "system").Token
	member := login(t, h, "Alice", "UCLA")

	status, env := call(t, h, http.MethodGet, "/api/admin/users", member.Token, nil)
	assertError(t, status, env, errs.ErrForbidden)

	_, env = call(t, h, http.MethodGet, "/api/admin/users", admin, nil)
	users := decode[[]user.User](t, env)
	require.Len(t, users, 5)
	assert.Equal(t, "Alice", users[len(users)-1].RealName)

	status, env = call(t, h, http.MethodPost, "/api/admin/users/"+user.AdminID+"/ban", admin, nil)
	assertError(t, status, env, errs.ErrCannotModerateAdmin)

	status, env = call(t, h, http.MethodPost, "/api/admin/users/nobody/ban", admin, nil)
	assertError(t, status, env, errs.ErrUserNotFound)

	_, env = call(t, h, http.MethodPost, "/api/chat/session", member.Token, StartSessionRequest{Topic: string(chat.TopicCases)})
	require.Equal(t, 0, env.Code)

	_, env = call(t, h, http.MethodPost, "/api/admin/users/"+member.User.ID+"/ban", admin, nil)
	require.Equal(t, 0, env.Code, env.Message)
	assert.True(t, decode[user.User](t, env).IsBanned)

	_, hasSession := deps.Store.ActiveSession(member.User.ID)
	assert.False(t, hasSession)

	status, env = call(t, h, http.MethodGet, "/api/posts", member.Token, nil)
	assertError(t, status, env, errs.ErrAccountRestricted)

	_, env = call(t, h, http.MethodPost, "/api/admin/users/"+member.User.ID+"/ban", admin, nil)
	assert.False(t, decode[user.User](t, env).IsBanned)

	status, _ = call(t, h, http.MethodGet, "/api/posts", member.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestFeed(t *testing.T) {
	h, _ := newTestRouter(t)
	member := login(t, h, "Alice", "UCLA")

	_, env := call(t, h, http.MethodPost, "/api/posts", member.Token, CreatePostRequest{Content: "Anyone else on night shift?"})
	created := decode[CreatePostResponse](t, env)
	require.True(t, created.Created)
	require.NotNil(t, created.Post)
	assert.Equal(t, member.User.Username, created.Post.AuthorName)

	_, env = call(t, h, http.MethodPost, "/api/posts", member.Token, CreatePostRequest{Content: "   "})
	assert.False(t, decode[CreatePostResponse](t, env).Created)

	status, env := call(t, h, http.MethodPost, "/api/posts", member.Token, CreatePostRequest{Content: string(bytes.Repeat([]byte("x"), post.MaxContentLength+1))})
	assertError(t, status, env, errs.ErrContentTooLong)

	_, env = call(t, h, http.MethodGet, "/api/posts", member.Token, nil)
	posts := decode[[]post.Post](t, env)
	require.Len(t, posts, 4)
	assert.Equal(t, created.Post.ID, posts[0].ID)
}

func TestChatLifecycle(t *testing.T) {
	h, _ := newTestRouter(t)
	member := login(t, h, "Alice", "UCLA").Token

	_, env := call(t, h, http.MethodGet, "/api/chat/topics", member, nil)
	assert.Len(t, decode[[]TopicInfo](t, env), len(chat.Topics()))

	status, env := call(t, h, http.MethodPost, "/api/chat/messages", member, SendMessageRequest{Text: "hi"})
	assertError(t, status, env, errs.ErrNoActiveSession)

	status, env = call(t, h, http.MethodPost, "/api/chat/session", member, StartSessionRequest{Topic: "Cardiology"})
	assertError(t, status, env, errs.ErrTopicInvalid)

	_, env = call(t, h, http.MethodPost, "/api/chat/session", member, StartSessionRequest{Topic: string(chat.TopicExams)})
	require.Equal(t, 0, env.Code, env.Message)
	session := decode[chat.Session](t, env)
	assert.Equal(t, chat.TopicExams, session.Topic)
	assert.Len(t, session.Messages, 1)

	_, env = call(t, h, http.MethodPost, "/api/chat/messages", member, SendMessageRequest{Text: "I have an exam tomorrow"})
	assert.True(t, decode[SendMessageResponse](t, env).Accepted)

	_, env = call(t, h, http.MethodPost, "/api/chat/messages", member, SendMessageRequest{Text: "  "})
	assert.False(t, decode[SendMessageResponse](t, env).Accepted)

	require.Eventually(t, func() bool {
		_, env := call(t, h, http.MethodGet, "/api/chat/session", member, nil)
		s := decode[chat.Session](t, env)
		return len(s.Messages) == 3 && !s.Composing
	}, 2*time.Second, 5*time.Millisecond)

	_, env = call(t, h, http.MethodDelete, "/api/chat/session", member, nil)
	assert.True(t, decode[map[string]bool](t, env)["left"])

	_, env = call(t, h, http.MethodDelete, "/api/chat/session", member, nil)
	assert.False(t, decode[map[string]bool](t, env)["left"])

	status, env = call(t, h, http.MethodGet, "/api/chat/session", member, nil)
	assertError(t, status, env, errs.ErrNoActiveSession)
}

func TestLogout_EndsSession(t *testing.T) {
	h, deps := newTestRouter(t)
	member := login(t, h, "Alice", "UCLA")

	_, env := call(t, h, http.MethodPost, "/api/chat/session", member.Token, StartSessionRequest{Topic: string(chat.TopicDating)})
	require.Equal(t, 0, env.Code)

	_, env = call(t, h, http.MethodPost, "/api/auth/logout", member.Token, nil)
	assert.Equal(t, store.ViewLanding, decode[IdentityResponse](t, env).View)

	_, ok := deps.Store.ActiveSession(member.User.ID)
	assert.False(t, ok)
}

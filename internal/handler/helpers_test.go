package handler

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/framez/internal/dbtest"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/identity"
	"github.com/weiawesome/framez/internal/imageproc"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/pkg/jwt"
	"github.com/weiawesome/framez/pkg/middleware"
	"github.com/weiawesome/framez/pkg/pubsub"
	"github.com/weiawesome/framez/pkg/response"
	"github.com/weiawesome/framez/pkg/storage"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

type testEnv struct {
	router *gin.Engine
	svc    Services
	local  *storage.LocalStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	st := repository.NewGormStore(db)
	tokens, err := jwt.NewManager(jwt.Config{Secret: "framez-test-secret-0123456789"})
	require.NoError(t, err)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicURL: "/media"})
	require.NoError(t, err)

	provider := identity.NewGormProvider(db, tokens, pubsub.NewMemoryPubSub(8), bcrypt.MinCost)
	authors := service.NewAuthorResolver(st.Users(), nil, time.Minute)
	assets := service.NewAssetService(local, imageproc.PostPreset, imageproc.AvatarPreset)
	profiles := service.NewProfileService(st.Users(), authors, nil)

	svc := Services{
		Auth:     service.NewAuthService(provider, st.Users()),
		Profiles: profiles,
		Posts:    service.NewPostService(st, authors, assets, nil),
		Comments: service.NewCommentService(st, authors, nil),
		Likes:    service.NewLikeService(st, authors, nil),
		Follows:  service.NewFollowService(st, authors, nil),
		Assets:   assets,
		Push:     service.NewPushService(profiles),
	}

	r := gin.New()
	NewHandler(svc, middleware.NewAuthMiddleware(tokens), 1<<20).RegisterRoutes(r)
	return &testEnv{router: r, svc: svc, local: local}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(t, req, token)
}

func (e *testEnv) upload(t *testing.T, path, token, field string, file []byte, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(field, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(t, req, token)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// signup registers a user through the API and returns its id and token.
func (e *testEnv) signup(t *testing.T, name string) (string, string) {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", domain.SignupRequest{
		Email:    name + "@framez.test",
		Password: "secret1",
		Name:     name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp domain.AuthResponse
	decode(t, env, &resp)
	return resp.User.ID, resp.AccessToken
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{B: 255, A: 255})))
	return buf.Bytes()
}

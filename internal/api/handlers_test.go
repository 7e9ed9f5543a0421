package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/dropgallery/internal/dropbox"
	"github.com/ericfisherdev/dropgallery/internal/repository"
	"github.com/ericfisherdev/dropgallery/internal/services"
	"github.com/ericfisherdev/dropgallery/web"
)

// stubProvider serves canned folder listings keyed by provider path
type stubProvider struct {
	listings map[string]*dropbox.ListFolderResult
	linkErr  error
}

func (p *stubProvider) ListFolder(_ context.Context, _, path string) (*dropbox.ListFolderResult, error) {
	if listing, ok := p.listings[path]; ok {
		return listing, nil
	}
	return &dropbox.ListFolderResult{}, nil
}

func (p *stubProvider) ListFolderContinue(_ context.Context, _, _ string) (*dropbox.ListFolderResult, error) {
	return &dropbox.ListFolderResult{}, nil
}

func (p *stubProvider) GetTemporaryLink(_ context.Context, _, path string) (string, error) {
	if p.linkErr != nil {
		return "", p.linkErr
	}
	return "https://content.example.com" + path, nil
}

type stubRevoker struct {
	mu     sync.Mutex
	err    error
	tokens []string
}

func (r *stubRevoker) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
	return r.err
}

type appFixture struct {
	router   *gin.Engine
	provider *stubProvider
	revoker  *stubRevoker
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-access-token","token_type":"bearer"}`))
	}))
	t.Cleanup(tokenServer.Close)

	provider := &stubProvider{listings: map[string]*dropbox.ListFolderResult{}}
	revoker := &stubRevoker{}

	sessionManager := services.NewSessionManager(
		repository.NewMemorySessionRepository(),
		services.DefaultSessionCookieConfig(false),
	)
	oauthService := services.NewOAuthService(services.OAuthConfig{
		ClientID:     "app-key",
		ClientSecret: "app-secret",
		RedirectURL:  "http://localhost:3000/oauthredirect",
		Endpoint: oauth2.Endpoint{
			AuthURL:  tokenServer.URL + "/authorize",
			TokenURL: tokenServer.URL + "/token",
		},
	}, repository.NewMemoryOAuthStateRepository(nil), revoker, nil)
	galleryService := services.NewGalleryService(provider, 0, nil)

	errorRenderer := NewErrorRenderer(nil)
	router := NewRouter(
		web.Templates(),
		NewAuthHandler(oauthService, sessionManager, errorRenderer, nil),
		NewGalleryHandler(galleryService, sessionManager, errorRenderer),
		nil,
	)

	return &appFixture{router: router, provider: provider, revoker: revoker}
}

func (fx *appFixture) do(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func galleryCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "gallery_session" {
			return c
		}
	}
	return nil
}

// authenticate runs the full login flow and returns the post-auth cookie
func authenticate(t *testing.T, fx *appFixture) *http.Cookie {
	t.Helper()

	login := fx.do(http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusFound, login.Code)
	preAuth := galleryCookie(login)
	require.NotNil(t, preAuth)

	authURL, err := url.Parse(login.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	callback := fx.do(http.MethodGet, "/oauthredirect?code=auth-code&state="+state, preAuth)
	require.Equal(t, http.StatusFound, callback.Code)
	require.Equal(t, "/", callback.Header().Get("Location"))

	postAuth := galleryCookie(callback)
	require.NotNil(t, postAuth)
	return postAuth
}

func TestLoginFlow(t *testing.T) {
	t.Run("LoginRedirectsToProvider", func(t *testing.T) {
		fx := newAppFixture(t)

		w := fx.do(http.MethodGet, "/login", nil)
		require.Equal(t, http.StatusFound, w.Code)

		authURL, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		query := authURL.Query()
		assert.Equal(t, "app-key", query.Get("client_id"))
		assert.Equal(t, "code", query.Get("response_type"))
		assert.NotEmpty(t, query.Get("state"))
		assert.NotNil(t, galleryCookie(w))
	})

	t.Run("CallbackRotatesSessionID", func(t *testing.T) {
		fx := newAppFixture(t)

		login := fx.do(http.MethodGet, "/login", nil)
		preAuth := galleryCookie(login)
		require.NotNil(t, preAuth)

		authURL, err := url.Parse(login.Header().Get("Location"))
		require.NoError(t, err)
		state := authURL.Query().Get("state")

		callback := fx.do(http.MethodGet, "/oauthredirect?code=auth-code&state="+state, preAuth)
		require.Equal(t, http.StatusFound, callback.Code)
		postAuth := galleryCookie(callback)
		require.NotNil(t, postAuth)

		assert.NotEqual(t, preAuth.Value, postAuth.Value)

		// The pre-auth identifier carries no privilege after login
		withOld := fx.do(http.MethodGet, "/", preAuth)
		assert.Equal(t, http.StatusFound, withOld.Code)
		assert.Equal(t, "/login", withOld.Header().Get("Location"))

		withNew := fx.do(http.MethodGet, "/", postAuth)
		assert.Equal(t, http.StatusOK, withNew.Code)
	})

	t.Run("CallbackWithoutCodeReturnsToLogin", func(t *testing.T) {
		fx := newAppFixture(t)

		login := fx.do(http.MethodGet, "/login", nil)
		preAuth := galleryCookie(login)
		authURL, err := url.Parse(login.Header().Get("Location"))
		require.NoError(t, err)
		state := authURL.Query().Get("state")

		w := fx.do(http.MethodGet, "/oauthredirect?state="+state, preAuth)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("ForgedStateRejected", func(t *testing.T) {
		fx := newAppFixture(t)

		login := fx.do(http.MethodGet, "/login", nil)
		preAuth := galleryCookie(login)

		w := fx.do(http.MethodGet, "/oauthredirect?code=auth-code&state=forged", preAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Sign-in failed")
	})

	t.Run("StateIssuedToAnotherSessionRejected", func(t *testing.T) {
		fx := newAppFixture(t)

		victim := fx.do(http.MethodGet, "/login", nil)
		authURL, err := url.Parse(victim.Header().Get("Location"))
		require.NoError(t, err)
		victimState := authURL.Query().Get("state")

		attacker := fx.do(http.MethodGet, "/login", nil)
		attackerCookie := galleryCookie(attacker)

		w := fx.do(http.MethodGet, "/oauthredirect?code=auth-code&state="+victimState, attackerCookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGallery(t *testing.T) {
	t.Run("UnauthenticatedRedirectsToLogin", func(t *testing.T) {
		fx := newAppFixture(t)

		w := fx.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("RootFolderRendersImagesWithoutBackLink", func(t *testing.T) {
		fx := newAppFixture(t)
		fx.provider.listings[""] = &dropbox.ListFolderResult{
			Entries: []dropbox.Entry{
				{Tag: "file", Name: "cat.jpg", PathLower: "/cat.jpg"},
				{Tag: "folder", Name: "Hawaii", PathLower: "/hawaii"},
			},
		}
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "https://content.example.com/cat.jpg")
		assert.Contains(t, body, `href="/hawaii"`)
		assert.NotContains(t, body, "go back")
	})

	t.Run("SubfolderRendersBackLinkToParent", func(t *testing.T) {
		fx := newAppFixture(t)
		fx.provider.listings["/hawaii/day1"] = &dropbox.ListFolderResult{
			Entries: []dropbox.Entry{
				{Tag: "file", Name: "beach.png", PathLower: "/hawaii/day1/beach.png"},
			},
		}
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/hawaii/day1", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "go back")
		assert.Contains(t, body, `href="/hawaii"`)
	})

	t.Run("EmptyFolderRendersEmptyView", func(t *testing.T) {
		fx := newAppFixture(t)
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Nothing here yet")
	})

	t.Run("TraversalPathRejected", func(t *testing.T) {
		fx := newAppFixture(t)
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/photos/../secret", cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("NonGETRejected", func(t *testing.T) {
		fx := newAppFixture(t)
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodPost, "/", cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ProviderFailureRendersErrorPage", func(t *testing.T) {
		fx := newAppFixture(t)
		fx.provider.listings[""] = &dropbox.ListFolderResult{
			Entries: []dropbox.Entry{
				{Tag: "file", Name: "cat.jpg", PathLower: "/cat.jpg"},
			},
		}
		fx.provider.linkErr = assert.AnError
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/", cookie)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Could not load images")
	})
}

func TestLogout(t *testing.T) {
	t.Run("RevokesTokenAndDestroysSession", func(t *testing.T) {
		fx := newAppFixture(t)
		cookie := authenticate(t, fx)

		w := fx.do(http.MethodGet, "/logout", cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, []string{"provider-access-token"}, fx.revoker.tokens)

		after := fx.do(http.MethodGet, "/", cookie)
		assert.Equal(t, http.StatusFound, after.Code)
		assert.Equal(t, "/login", after.Header().Get("Location"))
	})

	t.Run("SessionDestroyedEvenWhenRevocationFails", func(t *testing.T) {
		fx := newAppFixture(t)
		cookie := authenticate(t, fx)
		fx.revoker.err = assert.AnError

		w := fx.do(http.MethodGet, "/logout", cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		after := fx.do(http.MethodGet, "/", cookie)
		assert.Equal(t, http.StatusFound, after.Code)
	})

	t.Run("AnonymousLogoutSkipsRevocation", func(t *testing.T) {
		fx := newAppFixture(t)

		w := fx.do(http.MethodGet, "/logout", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Empty(t, fx.revoker.tokens)
	})
}

func TestHealthz(t *testing.T) {
	fx := newAppFixture(t)

	w := fx.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status"`)
}

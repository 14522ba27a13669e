package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/service/rolegate"
	"github.com/traPtitech/rolegate/testutils"
)

func newTestEngine(t *testing.T) *rolegate.Engine {
	t.Helper()
	repo := testutils.NewRepository()
	repo.MustSaveRole(model.DefaultRole, "[]", `{
		"pages":{"blog/new":{"rule":"deny","forward":"blog/all"},"pages/secret":"deny"},
		"actions":{"comment/save":"deny"}
	}`)
	return rolegate.NewEngine(repo, zap.NewNop())
}

func testUserResolver(c echo.Context) *model.UserInfo {
	return &model.UserInfo{ID: uuid.Must(uuid.NewV4()), Name: "alice"}
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestPageGatekeeper(t *testing.T) {
	t.Parallel()

	e := echo.New()
	mw := PageGatekeeper(newTestEngine(t), testUserResolver)

	do := func(path, referrer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if referrer != "" {
			req.Header.Set("Referer", referrer)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, mw(okHandler)(c))
		return rec
	}

	t.Run("Allowed", func(t *testing.T) {
		t.Parallel()
		rec := do("/blog/all", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("DeniedRedirectsToForward", func(t *testing.T) {
		t.Parallel()
		rec := do("/blog/new", "")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "blog/all", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("DeniedFallsBackToReferrer", func(t *testing.T) {
		t.Parallel()
		rec := do("/pages/secret", "/pages/all")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/pages/all", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("DeniedFallsBackToRoot", func(t *testing.T) {
		t.Parallel()
		rec := do("/pages/secret", "")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	})
}

func TestActionGatekeeper(t *testing.T) {
	t.Parallel()

	e := echo.New()
	mw := ActionGatekeeper(newTestEngine(t), testUserResolver)

	do := func(action string) error {
		req := httptest.NewRequest(http.MethodPost, "/action/"+action, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("action")
		c.SetParamValues(action)
		return mw(okHandler)(c)
	}

	t.Run("Allowed", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, do("profile/edit"))
	})

	t.Run("Denied", func(t *testing.T) {
		t.Parallel()
		err := do("comment/save")
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
		assert.Equal(t, "you are not permitted to perform 'comment/save'", he.Message)
	})
}

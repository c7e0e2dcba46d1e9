package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
)

func newWorkspaceEngine(t *testing.T) (*gin.Engine, *iauth.JWTService, *guardFixture, models.Tenant) {
	t.Helper()

	f := newGuardFixture(t)

	target := models.Tenant{Name: "target"}
	require.NoError(t, f.db.Create(&target).Error)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "workspace-test"})
	require.NoError(t, err)

	resolver, err := iauth.NewIdentityResolver(f.db, f.store)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth(jwt))
	r.Use(Workspace(resolver))
	handler := func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, identity.TenantID)
	}
	r.GET("/me", handler)
	r.GET("/workspaces/:tenantId/me", handler)

	return r, jwt, f, target
}

func issueToken(t *testing.T, jwt *iauth.JWTService, user models.User) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
	})
	require.NoError(t, err)
	return token
}

func workspaceRequest(r *gin.Engine, path, token, tenantHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantHeader != "" {
		req.Header.Set(TenantHeader, tenantHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestWorkspaceRequiresAuthentication(t *testing.T) {
	r, _, _, _ := newWorkspaceEngine(t)

	require.Equal(t, http.StatusUnauthorized, workspaceRequest(r, "/me", "", "").Code)
	require.Equal(t, http.StatusUnauthorized, workspaceRequest(r, "/me", "not-a-token", "").Code)
}

func TestWorkspaceDefaultsToCredentialTenant(t *testing.T) {
	r, jwt, f, _ := newWorkspaceEngine(t)
	user := f.userWith(t, "ops@acme.test")
	token := issueToken(t, jwt, user)

	w := workspaceRequest(r, "/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, f.tenant.ID, w.Body.String())
}

func TestWorkspacePathParamSwitchesTenant(t *testing.T) {
	r, jwt, f, target := newWorkspaceEngine(t)
	user := f.userWith(t, "ops@shared.test")
	require.NoError(t, f.db.Create(&models.Membership{TenantID: target.ID, Email: user.Email}).Error)
	token := issueToken(t, jwt, user)

	w := workspaceRequest(r, "/workspaces/"+target.ID+"/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, target.ID, w.Body.String())
}

func TestWorkspaceHeaderBeatsPathParam(t *testing.T) {
	r, jwt, f, target := newWorkspaceEngine(t)
	user := f.userWith(t, "ops@shared.test")
	require.NoError(t, f.db.Create(&models.Membership{TenantID: target.ID, Email: user.Email}).Error)
	token := issueToken(t, jwt, user)

	// the path addresses the home tenant; the header overrides it
	w := workspaceRequest(r, "/workspaces/"+f.tenant.ID+"/me", token, target.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, target.ID, w.Body.String())
}

func TestWorkspaceSwitchWithoutMembershipIsForbidden(t *testing.T) {
	r, jwt, f, target := newWorkspaceEngine(t)
	user := f.userWith(t, "ops@acme.test")
	token := issueToken(t, jwt, user)

	w := workspaceRequest(r, "/me", token, target.ID)
	require.Equal(t, http.StatusForbidden, w.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"traindesk/internal/common"
	"traindesk/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTenantContextService struct {
	mock.Mock
}

func (m *MockTenantContextService) Resolve(ctx context.Context, slug string, principal *models.Profile) (*models.TenantContext, error) {
	args := m.Called(ctx, slug, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantContext), args.Error(1)
}

func tenantRequest(slug string, principal *models.Profile) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/t/"+slug+"/admin/courses", nil)
	if principal != nil {
		req = req.WithContext(common.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tenantSlug")
	c.SetParamValues(slug)
	return c, rec
}

func TestTenantContext_Success(t *testing.T) {
	principal := &models.Profile{ID: uuid.New()}
	tc := &models.TenantContext{TenantID: uuid.New(), Slug: "acme", Role: models.RoleAdmin}

	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "acme", principal).Return(tc, nil)

	c, rec := tenantRequest("acme", principal)
	handler := NewTenantContextMiddleware(svc).Resolve()(func(c echo.Context) error {
		got, ok := GetTenantContext(c)
		assert.True(t, ok)
		assert.Equal(t, tc.TenantID, got.TenantID)
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestTenantContext_DenialIs404(t *testing.T) {
	// A nil resolution covers missing tenant, inactive tenant, and missing
	// membership; all three produce an identical 404.
	principal := &models.Profile{ID: uuid.New()}

	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "ghost", principal).Return(nil, nil)

	c, rec := tenantRequest("ghost", principal)
	handler := NewTenantContextMiddleware(svc).Resolve()(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantContext_DependencyFailureIs404(t *testing.T) {
	principal := &models.Profile{ID: uuid.New()}

	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "acme", principal).Return(nil, errors.New("connection refused"))

	c, rec := tenantRequest("acme", principal)
	handler := NewTenantContextMiddleware(svc).Resolve()(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantContext_UnauthenticatedIs404(t *testing.T) {
	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "acme", (*models.Profile)(nil)).Return(nil, nil)

	c, rec := tenantRequest("acme", nil)
	handler := NewTenantContextMiddleware(svc).Resolve()(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantContext_MemoizedWithinRequest(t *testing.T) {
	principal := &models.Profile{ID: uuid.New()}
	tc := &models.TenantContext{TenantID: uuid.New(), Slug: "acme", Role: models.RoleOwner}

	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "acme", principal).Return(tc, nil).Once()

	c, _ := tenantRequest("acme", principal)
	m := NewTenantContextMiddleware(svc)

	first, err := m.resolveMemoized(c, "acme", principal)
	assert.NoError(t, err)
	second, err := m.resolveMemoized(c, "acme", principal)
	assert.NoError(t, err)
	assert.Same(t, first, second)
	svc.AssertExpectations(t)
}

func TestTenantContext_NotMemoizedAcrossRequests(t *testing.T) {
	principal := &models.Profile{ID: uuid.New()}
	tc := &models.TenantContext{TenantID: uuid.New(), Slug: "acme", Role: models.RoleOwner}

	svc := &MockTenantContextService{}
	svc.On("Resolve", mock.Anything, "acme", principal).Return(tc, nil).Twice()

	m := NewTenantContextMiddleware(svc)
	handler := m.Resolve()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Two separate requests each resolve fresh, so a revoked membership is
	// seen immediately on the next request.
	for i := 0; i < 2; i++ {
		c, rec := tenantRequest("acme", principal)
		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	svc.AssertExpectations(t)
}

func TestRequireManager(t *testing.T) {
	cases := []struct {
		role    string
		allowed bool
	}{
		{models.RoleOwner, true},
		{models.RoleAdmin, true},
		{models.RoleTrainer, true},
		{models.RoleEmployee, false},
	}

	for _, tt := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/t/acme/admin/courses", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("tenant_context", &models.TenantContext{TenantID: uuid.New(), Role: tt.role})

		handler := RequireManager()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		if tt.allowed {
			assert.Equal(t, http.StatusOK, rec.Code, "role %s", tt.role)
		} else {
			// Employees get a 404, not a 403; the admin tree does not admit
			// to existing.
			assert.Equal(t, http.StatusNotFound, rec.Code, "role %s", tt.role)
		}
	}
}

func TestRequireAuthenticated(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/setup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuthenticated()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/setup", nil)
	req = req.WithContext(common.WithPrincipal(req.Context(), &models.Profile{ID: uuid.New()}))
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func testContext(headers map[string]string, query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestExtractTenantID_Default(t *testing.T) {
	c := testContext(nil, "")
	if tid := extractTenantID(c, "default"); tid != "default" {
		t.Errorf("expected default, got %s", tid)
	}
}

func TestExtractTenantID_Header(t *testing.T) {
	c := testContext(map[string]string{"X-Tenant-ID": "acme"}, "")
	if tid := extractTenantID(c, "default"); tid != "acme" {
		t.Errorf("expected acme, got %s", tid)
	}
}

func TestExtractTenantID_QueryParam(t *testing.T) {
	c := testContext(nil, "tenant_id=clinic1")
	if tid := extractTenantID(c, "default"); tid != "clinic1" {
		t.Errorf("expected clinic1, got %s", tid)
	}
}

func TestExtractTenantID_JWTClaimWins(t *testing.T) {
	c := testContext(map[string]string{"X-Tenant-ID": "header_tenant"}, "")
	c.Set("jwt_tenant_id", "jwt_tenant")
	if tid := extractTenantID(c, "default"); tid != "jwt_tenant" {
		t.Errorf("expected jwt_tenant, got %s", tid)
	}
}

func TestTenantIDPattern(t *testing.T) {
	for _, valid := range []string{"default", "acme", "clinic_1", "T9"} {
		if !tenantIDPattern.MatchString(valid) {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []string{"", "a-b", "x;DROP TABLE", "a b", "t.1"} {
		if tenantIDPattern.MatchString(invalid) {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx for empty context")
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil tx for wrong value type")
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil conn for empty context")
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TenantIDKey, "acme")
	if tid := TenantFromContext(ctx); tid != "acme" {
		t.Errorf("expected acme, got %s", tid)
	}
	if tid := TenantFromContext(context.Background()); tid != "" {
		t.Errorf("expected empty, got %s", tid)
	}
}

func TestCreateTenantSchema_InvalidIdentifier(t *testing.T) {
	err := CreateTenantSchema(context.Background(), nil, "bad-tenant;", "")
	if err == nil {
		t.Error("expected error for invalid tenant identifier")
	}
}

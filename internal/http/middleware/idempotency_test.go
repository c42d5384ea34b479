package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestGetIdempotencyKey_IsReplay_Accessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	if IsReplay(c) {
		t.Fatalf("expected no replay")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key should be absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay should be false")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected replay")
	}
}

type lookupCall struct {
	scope, key string
	n          int
}

func newIdemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) (*gin.Engine, *struct {
	key    string
	replay bool
	bypass bool
}) {
	gin.SetMode(gin.TestMode)
	seen := &struct {
		key    string
		replay bool
		bypass bool
	}{}
	r := gin.New()
	r.Use(IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		seen.key, _ = GetIdempotencyKey(c)
		seen.replay = IsReplay(c)
		seen.bypass = IsRateBypass(c)
		c.Status(http.StatusNoContent)
	}
	r.POST("/submit", h)
	r.GET("/read", h)
	return r, seen
}

func TestIdempotencyValidator_NoHeaderOrSafeMethod(t *testing.T) {
	called := false
	r, seen := newIdemRouter(IdempotencyOptions{}, func(context.Context, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if w.Code != http.StatusNoContent || called || seen.key != "" {
		t.Fatalf("no header: code=%d called=%v key=%q", w.Code, called, seen.key)
	}

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set(HeaderIdempotencyKey, "!!not valid!!")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || called || seen.key != "" {
		t.Fatalf("GET must ignore the header: code=%d", w.Code)
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	r, _ := newIdemRouter(IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z]+$`)}, nil)

	for _, key := range []string{"UPPER", strings.Repeat("a", 9)} {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status=%d", key, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body["code"] != "bad_idempotency_key" || body["error"] == "" {
			t.Fatalf("unexpected body: %#v", body)
		}
	}
}

func TestIdempotencyValidator_LookupHitMissError(t *testing.T) {
	var call lookupCall
	result := false
	var lookupErr error
	r, seen := newIdemRouter(IdempotencyOptions{}, func(_ context.Context, scope, key string, now time.Time) (bool, error) {
		call.scope, call.key = scope, key
		call.n++
		if now.Location() != time.UTC {
			t.Errorf("lookup should receive UTC time")
		}
		return result, lookupErr
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = net.JoinHostPort("198.51.100.4", "5555")
		req.Header.Set(HeaderIdempotencyKey, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusNoContent || seen.key != "key-1" || seen.replay || seen.bypass {
		t.Fatalf("miss: code=%d seen=%+v", code, *seen)
	}
	if call.scope != "ip:198.51.100.4" || call.key != "key-1" {
		t.Fatalf("lookup args: %+v", call)
	}

	result = true
	if do(); !seen.replay || !seen.bypass {
		t.Fatalf("hit should mark replay and bypass: %+v", *seen)
	}

	lookupErr = errors.New("redis down")
	if do(); seen.replay {
		t.Fatalf("lookup error must be treated as a miss")
	}
	if call.n != 3 {
		t.Fatalf("expected 3 lookups, got %d", call.n)
	}
}

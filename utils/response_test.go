package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSuccessMergesFlag(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	Success(ctx, http.StatusCreated, gin.H{"data": "x"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["success"] != true || body["data"] != "x" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestFail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    float64
		message string
	}{
		{"app error", NotFoundError("Post not found"), http.StatusNotFound, CodeNotFound, "Post not found"},
		{"wrapped app error", errors.Join(errors.New("ctx"), ConflictError("dup")), http.StatusConflict, CodeConflict, "dup"},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
			Fail(ctx, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			body := decode(t, w)
			if body["success"] != false || body["code"] != tt.code || body["message"] != tt.message {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestHasVisibleText(t *testing.T) {
	tests := map[string]bool{
		"Tom & Jerry":               true,
		"it's 2 < 3":                true,
		"<b>bold</b>":               true,
		"":                          false,
		"   ":                       false,
		"<script>alert(1)</script>": false,
		"<p> </p><br/>":             false,
	}
	for in, want := range tests {
		if got := HasVisibleText(in); got != want {
			t.Errorf("HasVisibleText(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("p")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "p") || CheckPassword(hash, "q") {
		t.Fatal("bcrypt comparison mismatch")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	long := strings.Repeat("a", MaxPasswordBytes+8)
	if _, err := HashPassword(long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("72 byte password rejected: %v", err)
	}
}

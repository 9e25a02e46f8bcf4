package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/internal/middleware"
	"github.com/coffee-focus/coffeefocus/internal/testutil"
	"github.com/coffee-focus/coffeefocus/web"
)

// newTestRouter resets the database and mounts the production route table
// with the credential rate limit replaced by a pass-through.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	testutil.SetupDB(t)

	previous := runAsync
	runAsync = func(fn func()) { fn() }
	t.Cleanup(func() { runAsync = previous })

	r := gin.New()
	r.SetHTMLTemplate(template.Must(web.Templates()))
	r.NoRoute(middleware.OptionalAuth(), NotFoundPage)

	RegisterRoutes(r, func(ctx *gin.Context) { ctx.Next() })

	return r
}

// request sends body (a string is sent verbatim, anything else as JSON).
func request(t *testing.T, r http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	message, _ := decode(t, w)["error"].(string)
	return message
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote records requests and answers like a minimal W3C remote end.
type fakeRemote struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]interface{}
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.bodies[key] = body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	reply := func(v interface{}) { _ = json.NewEncoder(w).Encode(map[string]interface{}{"value": v}) }

	switch {
	case key == "POST /session":
		reply(map[string]interface{}{"sessionId": "s-1", "capabilities": map[string]interface{}{}})
	case key == "POST /session/s-1/element":
		if body["value"] == "#missing" {
			w.WriteHeader(http.StatusNotFound)
			reply(map[string]string{"error": "no such element", "message": "Unable to locate element"})
			return
		}
		reply(map[string]string{elementKey: "e-1"})
	case key == "GET /session/s-1/element/e-1/text":
		reply("Welcome back")
	case key == "GET /session/s-1/screenshot":
		reply(base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	default:
		reply(nil)
	}
}

func newFakeRemote(t *testing.T) (*fakeRemote, *WebDriverFactory) {
	remote := &fakeRemote{bodies: map[string]map[string]interface{}{}}
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)
	return remote, NewWebDriverFactory(WebDriverConfig{URL: srv.URL + "/", Browser: "chrome", Headless: true})
}

func TestWebDriver_Session(t *testing.T) {
	remote, factory := newFakeRemote(t)
	ctx := context.Background()

	driver, err := factory.NewSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s-1", driver.(*WebDriver).SessionID())

	caps := remote.bodies["POST /session"]["capabilities"].(map[string]interface{})
	always := caps["alwaysMatch"].(map[string]interface{})
	assert.Equal(t, "chrome", always["browserName"])
	assert.Contains(t, always, "goog:chromeOptions")

	require.NoError(t, driver.Open(ctx, "https://example.com"))
	assert.Equal(t, "https://example.com", remote.bodies["POST /session/s-1/url"]["url"])

	require.NoError(t, driver.Close(ctx))
	assert.Contains(t, remote.requests, "DELETE /session/s-1")
}

func TestWebDriver_ElementInteractions(t *testing.T) {
	remote, factory := newFakeRemote(t)
	ctx := context.Background()
	driver, err := factory.NewSession(ctx)
	require.NoError(t, err)

	el, err := driver.FindElement(ctx, By{Kind: models.TargetID, Value: "username"})
	require.NoError(t, err)
	assert.Equal(t, "css selector", remote.bodies["POST /session/s-1/element"]["using"])
	assert.Equal(t, `[id="username"]`, remote.bodies["POST /session/s-1/element"]["value"])

	require.NoError(t, el.SendKeys(ctx, "alice"))
	assert.Equal(t, "alice", remote.bodies["POST /session/s-1/element/e-1/value"]["text"])

	require.NoError(t, el.Click(ctx))
	require.NoError(t, el.DoubleClick(ctx))
	assert.Contains(t, remote.requests, "POST /session/s-1/element/e-1/click")
	assert.Contains(t, remote.requests, "POST /session/s-1/actions")

	text, err := el.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", text)

	shot, err := driver.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), shot)
}

func TestWebDriver_XpathLocator(t *testing.T) {
	remote, factory := newFakeRemote(t)
	ctx := context.Background()
	driver, err := factory.NewSession(ctx)
	require.NoError(t, err)

	_, err = driver.FindElement(ctx, By{Kind: models.TargetXpath, Value: "//button"})
	require.NoError(t, err)
	assert.Equal(t, "xpath", remote.bodies["POST /session/s-1/element"]["using"])
}

func TestWebDriver_NoSuchElement(t *testing.T) {
	_, factory := newFakeRemote(t)
	ctx := context.Background()
	driver, err := factory.NewSession(ctx)
	require.NoError(t, err)

	_, err = driver.FindElement(ctx, By{Kind: models.TargetCss, Value: "#missing"})
	require.Error(t, err)

	var wire *WireError
	require.ErrorAs(t, err, &wire)
	assert.Equal(t, http.StatusNotFound, wire.Status)
	assert.Equal(t, "no such element", wire.Code)
	assert.Contains(t, err.Error(), "Css(#missing)")
}

func TestLocate_IDEscapesSelectorString(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"login", `[id="login"]`},
		{`say"hi"`, `[id="say\"hi\""]`},
		{`C:\tmp`, `[id="C:\\tmp"]`},
		{`a\"b`, `[id="a\\\"b"]`},
	}
	for _, tt := range tests {
		using, value, err := locate(By{Kind: models.TargetID, Value: tt.id})
		require.NoError(t, err)
		assert.Equal(t, "css selector", using)
		assert.Equal(t, tt.want, value, tt.id)
	}
}

func TestLocate_UnknownKind(t *testing.T) {
	_, _, err := locate(By{Kind: "Name", Value: "q"})
	assert.Error(t, err)
}

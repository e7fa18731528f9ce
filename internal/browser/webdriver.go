package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/go-resty/resty/v2"
)

// elementKey is the W3C web element identifier.
const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// WebDriverConfig configures sessions against a W3C WebDriver endpoint.
type WebDriverConfig struct {
	URL      string
	Browser  string
	Headless bool
	Timeout  time.Duration
}

// WebDriverFactory creates sessions over HTTP.
type WebDriverFactory struct {
	cfg    WebDriverConfig
	client *resty.Client
}

// NewWebDriverFactory builds a factory with a shared resty client.
func NewWebDriverFactory(cfg WebDriverConfig) *WebDriverFactory {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &WebDriverFactory{cfg: cfg, client: client}
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WireError is an error reported by the remote end.
type WireError struct {
	Status  int
	Code    string
	Message string
}

func (e *WireError) Error() string {
	return fmt.Sprintf("webdriver %d %s: %s", e.Status, e.Code, e.Message)
}

func (f *WebDriverFactory) capabilities() map[string]interface{} {
	always := map[string]interface{}{"browserName": f.cfg.Browser}
	if f.cfg.Headless {
		switch f.cfg.Browser {
		case "firefox":
			always["moz:firefoxOptions"] = map[string]interface{}{"args": []string{"-headless"}}
		default:
			always["goog:chromeOptions"] = map[string]interface{}{"args": []string{"--headless=new"}}
		}
	}
	return map[string]interface{}{
		"capabilities": map[string]interface{}{"alwaysMatch": always},
	}
}

// NewSession starts a browser session.
func (f *WebDriverFactory) NewSession(ctx context.Context) (Driver, error) {
	var out struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	resp, err := f.client.R().SetContext(ctx).SetBody(f.capabilities()).SetResult(&out).Post("/session")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if out.Value.SessionID == "" {
		return nil, fmt.Errorf("failed to create session: empty session id")
	}
	return &WebDriver{client: f.client, sessionID: out.Value.SessionID}, nil
}

// check turns transport failures and W3C error payloads into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	var payload struct {
		Value wireError `json:"value"`
	}
	if jerr := json.Unmarshal(resp.Body(), &payload); jerr != nil || payload.Value.Error == "" {
		return &WireError{Status: resp.StatusCode(), Code: "unknown error", Message: strings.TrimSpace(resp.String())}
	}
	return &WireError{Status: resp.StatusCode(), Code: payload.Value.Error, Message: payload.Value.Message}
}

// WebDriver is a live W3C session.
type WebDriver struct {
	client    *resty.Client
	sessionID string
}

// SessionID returns the remote session id.
func (d *WebDriver) SessionID() string {
	return d.sessionID
}

func (d *WebDriver) path(parts ...string) string {
	return "/session/" + d.sessionID + "/" + strings.Join(parts, "/")
}

func (d *WebDriver) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	req := d.client.R().SetContext(ctx).SetBody(body)
	if result != nil {
		req = req.SetResult(result)
	}
	resp, err := req.Post(path)
	return check(resp, err)
}

func (d *WebDriver) Open(ctx context.Context, url string) error {
	return d.post(ctx, d.path("url"), map[string]string{"url": url}, nil)
}

// idEscaper quotes a value for a CSS attribute selector string.
var idEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// locate maps a locator to a W3C strategy. The protocol has no id strategy, so Id
// becomes an attribute selector.
func locate(by By) (string, string, error) {
	switch by.Kind {
	case models.TargetCss:
		return "css selector", by.Value, nil
	case models.TargetXpath:
		return "xpath", by.Value, nil
	case models.TargetID:
		return "css selector", fmt.Sprintf(`[id="%s"]`, idEscaper.Replace(by.Value)), nil
	default:
		return "", "", fmt.Errorf("unknown locator kind %q", by.Kind)
	}
}

func (d *WebDriver) FindElement(ctx context.Context, by By) (Element, error) {
	using, value, err := locate(by)
	if err != nil {
		return nil, err
	}
	var out struct {
		Value map[string]string `json:"value"`
	}
	if err := d.post(ctx, d.path("element"), map[string]string{"using": using, "value": value}, &out); err != nil {
		return nil, fmt.Errorf("find element %s: %w", by, err)
	}
	id := out.Value[elementKey]
	if id == "" {
		return nil, fmt.Errorf("find element %s: no element reference in response", by)
	}
	return &webElement{driver: d, id: id}, nil
}

func (d *WebDriver) Screenshot(ctx context.Context) ([]byte, error) {
	var out struct {
		Value string `json:"value"`
	}
	resp, err := d.client.R().SetContext(ctx).SetResult(&out).Get(d.path("screenshot"))
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return base64.StdEncoding.DecodeString(out.Value)
}

func (d *WebDriver) Close(ctx context.Context) error {
	resp, err := d.client.R().SetContext(ctx).Delete("/session/" + d.sessionID)
	return check(resp, err)
}

type webElement struct {
	driver *WebDriver
	id     string
}

func (e *webElement) SendKeys(ctx context.Context, text string) error {
	return e.driver.post(ctx, e.driver.path("element", e.id, "value"), map[string]string{"text": text}, nil)
}

func (e *webElement) Click(ctx context.Context) error {
	return e.driver.post(ctx, e.driver.path("element", e.id, "click"), map[string]string{}, nil)
}

// DoubleClick goes through the actions API since the protocol has no dedicated endpoint.
func (e *webElement) DoubleClick(ctx context.Context) error {
	click := []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": 0, "y": 0, "origin": map[string]string{elementKey: e.id}},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
	}
	body := map[string]interface{}{
		"actions": []map[string]interface{}{{
			"type":       "pointer",
			"id":         "mouse",
			"parameters": map[string]string{"pointerType": "mouse"},
			"actions":    click,
		}},
	}
	return e.driver.post(ctx, e.driver.path("actions"), body, nil)
}

func (e *webElement) Text(ctx context.Context) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	resp, err := e.driver.client.R().SetContext(ctx).SetResult(&out).Get(e.driver.path("element", e.id, "text"))
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.Value, nil
}

var _ Factory = (*WebDriverFactory)(nil)

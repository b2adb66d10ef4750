package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

// devicePage is the raw material extracted from the authorized-devices page:
// the two JSON device lists, the token id of the requesting session, and the
// account security attributes that ride on the same element.
type devicePage struct {
	active         []map[string]any
	revoked        []map[string]any
	currentTokenID string

	twoFactorStatus int
	accountName     string
	email           string
	phoneHint       string
}

// FetchDevices downloads, parses, and normalizes the authorized-devices
// page into the canonical device model.
func (c *Client) FetchDevices(ctx context.Context, sess entity.Session, now time.Time) ([]entity.Device, error) {
	page, err := c.fetchDevicePage(ctx, sess)
	if err != nil {
		return nil, err
	}

	devices := make([]entity.Device, 0, len(page.active)+len(page.revoked))
	for _, raw := range page.active {
		devices = append(devices, normalizeDevice(raw, entity.DeviceCategoryActive, page.currentTokenID, now))
	}
	for _, raw := range page.revoked {
		devices = append(devices, normalizeDevice(raw, entity.DeviceCategoryRecent, page.currentTokenID, now))
	}

	return devices, nil
}

// FetchSecurityStatus extracts the account security summary carried on the
// same page element as the device lists.
func (c *Client) FetchSecurityStatus(ctx context.Context, sess entity.Session) (*entity.SecurityStatus, error) {
	page, err := c.fetchDevicePage(ctx, sess)
	if err != nil {
		return nil, err
	}

	return &entity.SecurityStatus{
		AccountName:     page.accountName,
		Email:           page.email,
		PhoneHint:       page.phoneHint,
		TwoFactorStatus: page.twoFactorStatus,
	}, nil
}

// RemoveAllDevices issues the sign-out-everywhere action. The provider may
// answer with a redirect to a login path even though the POST succeeded,
// because the action can invalidate the very session that requested it; that
// redirect is reported as login-required.
func (c *Client) RemoveAllDevices(ctx context.Context, sess entity.Session) error {
	ctx, span := c.startSpan(ctx, "RemoveAllDevices")
	defer span.End()

	form := url.Values{}
	form.Set("action", "deauthorize")
	form.Set("sessionid", sess.SessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.store+"/twofactor/manage_action", strings.NewReader(form.Encode()))
	if err != nil {
		return goerror.NewServer(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Cookie", sessionCookies(sess))

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return networkError(err)
	}

	body, err := readBody(resp)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		if strings.Contains(location, "/login") {
			return goerror.NewRemote(nil, "session is no longer valid, login required", goerror.CodeLoginRequired)
		}
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, body)
	}

	return nil
}

func (c *Client) fetchDevicePage(ctx context.Context, sess entity.Session) (*devicePage, error) {
	ctx, span := c.startSpan(ctx, "FetchDevicePage")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.store+"/account/authorizeddevices", nil)
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Cookie", sessionCookies(sess))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	return parseDevicePage(body)
}

// parseDevicePage locates the application_config element and decodes its
// JSON-bearing attributes. A logged-out page renders with HTTP 200 but
// without the element or its device attributes, so their absence is the
// login-required signal.
func parseDevicePage(markup []byte) (*devicePage, error) {
	attrs := findApplicationConfig(markup)
	if attrs == nil {
		return nil, goerror.NewRemote(nil, "session is no longer valid, login required", goerror.CodeLoginRequired)
	}

	activeJSON, hasActive := attrs["data-active_devices"]
	revokedJSON, hasRevoked := attrs["data-revoked_devices"]
	if !hasActive && !hasRevoked {
		return nil, goerror.NewRemote(nil, "session is no longer valid, login required", goerror.CodeLoginRequired)
	}

	// The tokenizer lowercases attribute keys, so data-accountName arrives
	// as data-accountname. Scalar attributes are JSON-encoded in the page.
	page := &devicePage{
		currentTokenID:  jsonStringAttr(attrs["data-requesting_token_id"]),
		accountName:     jsonStringAttr(attrs["data-accountname"]),
		email:           jsonStringAttr(attrs["data-email"]),
		phoneHint:       jsonStringAttr(attrs["data-phone_hint"]),
		twoFactorStatus: twoFactorState(attrs["data-two_factor_status"]),
	}

	if hasActive {
		if err := json.Unmarshal([]byte(activeJSON), &page.active); err != nil {
			return nil, goerror.NewRemote(err, "malformed active device list", goerror.CodeDataParse)
		}
	}
	if hasRevoked {
		if err := json.Unmarshal([]byte(revokedJSON), &page.revoked); err != nil {
			return nil, goerror.NewRemote(err, "malformed revoked device list", goerror.CodeDataParse)
		}
	}

	return page, nil
}

// jsonStringAttr decodes a JSON-encoded scalar data attribute. Attributes
// that arrive as bare strings are returned as-is.
func jsonStringAttr(raw string) string {
	raw = strings.TrimSpace(raw)

	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return strings.Trim(raw, `"`)
}

// twoFactorState reads the state out of data-two_factor_status, which the
// page carries as a JSON object; older markup renders a bare number.
func twoFactorState(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	var status struct {
		State int `json:"state"`
	}
	if err := json.Unmarshal([]byte(raw), &status); err == nil {
		return status.State
	}

	var state int
	if err := json.Unmarshal([]byte(raw), &state); err == nil {
		return state
	}
	return 0
}

// findApplicationConfig walks the document for id="application_config" and
// returns its attributes. The tokenizer unescapes HTML entities in attribute
// values, which is exactly what the embedded JSON needs.
func findApplicationConfig(markup []byte) map[string]string {
	tokenizer := html.NewTokenizer(bytes.NewReader(markup))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()

			attrs := make(map[string]string, len(token.Attr))
			for _, attr := range token.Attr {
				attrs[attr.Key] = attr.Val
			}

			if attrs["id"] == "application_config" {
				return attrs
			}
		}
	}
}

// timeField is one named strategy for reading a timestamp out of a raw
// device record. Strategies are tried in order; the order matters because
// the source records are inconsistently shaped.
type timeField struct {
	name string
	read func(raw map[string]any) (int64, bool)
}

func nestedTime(key string) func(raw map[string]any) (int64, bool) {
	return func(raw map[string]any) (int64, bool) {
		nested, ok := raw[key].(map[string]any)
		if !ok {
			return 0, false
		}
		return numericField(nested, "time")
	}
}

func flatTime(key string) func(raw map[string]any) (int64, bool) {
	return func(raw map[string]any) (int64, bool) {
		return numericField(raw, key)
	}
}

var lastSeenFields = []timeField{
	{name: "last_seen.time", read: nestedTime("last_seen")},
	{name: "time_updated", read: flatTime("time_updated")},
}

var firstSeenFields = []timeField{
	{name: "first_seen.time", read: nestedTime("first_seen")},
	{name: "time_updated", read: flatTime("time_updated")},
}

func readTime(raw map[string]any, fields []timeField) time.Time {
	for _, f := range fields {
		if secs, ok := f.read(raw); ok && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Time{}
}

func numericField(raw map[string]any, key string) (int64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func boolField(raw map[string]any, key string) bool {
	v, _ := raw[key].(bool)
	return v
}

func normalizeDevice(raw map[string]any, category entity.DeviceCategory, currentTokenID string, now time.Time) entity.Device {
	description := stringField(raw, "token_description")
	kind := inferKind(raw, description)
	if description == "" {
		description = kindLabel(kind)
	}

	device := entity.Device{
		TokenID:     strings.Trim(stringField(raw, "token_id"), `"`),
		Description: description,
		Category:    category,
		Kind:        kind,
		Location:    deviceLocation(raw),
		LoggedIn:    boolField(raw, "logged_in"),
		LastSeen:    readTime(raw, lastSeenFields),
		FirstSeen:   readTime(raw, firstSeenFields),
	}

	device.IsNew = device.NewlySeen(now)
	device.IsCurrentDevice = device.TokenID != "" && device.TokenID == currentTokenID

	return device
}

// inferKind resolves the platform_type field: 1 is the desktop client, 3 is
// a mobile device (iOS when the description says so, android otherwise),
// anything else is a web browser.
func inferKind(raw map[string]any, description string) entity.DeviceKind {
	platform, _ := numericField(raw, "platform_type")
	lower := strings.ToLower(description)

	switch platform {
	case 1:
		return entity.DeviceKindPCClient
	case 3:
		if strings.Contains(lower, "ios") || strings.Contains(lower, "iphone") {
			return entity.DeviceKindMobileIOS
		}
		return entity.DeviceKindMobileAndroid
	default:
		return entity.DeviceKindWeb
	}
}

// kindLabel stands in for the description when a record carries none.
func kindLabel(kind entity.DeviceKind) string {
	switch kind {
	case entity.DeviceKindPCClient:
		return "PC Steam Client"
	case entity.DeviceKindMobileIOS, entity.DeviceKindMobileAndroid:
		return "Mobile device"
	default:
		return "Web browser"
	}
}

func deviceLocation(raw map[string]any) string {
	nested, ok := raw["last_seen"].(map[string]any)
	if !ok {
		return ""
	}

	city := stringField(nested, "city")
	country := stringField(nested, "country")
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

package steam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitLogin drives the remote login flow with account name, password, and
// a current one-time code, and consumes the cookie set it produces. The
// primary session token missing from that cookie set is fatal; nothing
// downstream can function without it.
func (c *Client) SubmitLogin(ctx context.Context, accountName, password, code string) (*entity.Session, error) {
	ctx, span := c.startSpan(ctx, "SubmitLogin")
	defer span.End()

	form := url.Values{}
	form.Set("username", accountName)
	form.Set("password", password)
	form.Set("twofactorcode", code)
	form.Set("remember_login", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.community+"/login/dologin", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("X-Requested-With", appRequestedWith)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, goerror.NewRemote(nil, "credentials rejected by provider", goerror.CodeLoginRequired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, goerror.NewRemote(err, "malformed login payload", goerror.CodeDataParse)
	}

	if !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = "login rejected by provider"
		}
		return nil, goerror.NewRemote(nil, msg, goerror.CodeRemoteProtocol)
	}

	var accessToken, sessionID, refreshToken string
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case "steamLoginSecure":
			accessToken = cookie.Value
		case "sessionid":
			sessionID = cookie.Value
		case "steamRefresh_steam":
			refreshToken = cookie.Value
		}
	}

	if accessToken == "" {
		return nil, goerror.NewRemote(nil, "login response is missing the session token", goerror.CodeMalformedResponse)
	}
	if sessionID == "" {
		return nil, goerror.NewRemote(nil, "login response is missing the session id", goerror.CodeMalformedResponse)
	}

	return &entity.Session{
		SessionID:    sessionID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

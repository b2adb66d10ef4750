package steam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

// signatureRejectedMarker is the exact failure message the provider returns
// when a confirmation signature does not verify.
const signatureRejectedMarker = "Oh nooooooes!"

type wireConfirmation struct {
	ID        string   `json:"id"`
	Nonce     string   `json:"nonce"`
	Type      int      `json:"type"`
	TypeName  string   `json:"type_name"`
	CreatorID string   `json:"creator_id"`
	Headline  string   `json:"headline"`
	Summary   []string `json:"summary"`
	Icon      string   `json:"icon"`
	Multi     bool     `json:"multi"`
	Creation  string   `json:"creation_time"`
}

type confirmationsResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	NeedAuth bool               `json:"needauth"`
	Conf     []wireConfirmation `json:"conf"`
}

func signedQuery(sr entity.SignedRequest) url.Values {
	q := url.Values{}
	q.Set("p", sr.DeviceID)
	q.Set("a", sr.SteamID)
	q.Set("k", sr.Key)
	q.Set("t", strconv.FormatInt(sr.Time, 10))
	q.Set("m", "android")
	q.Set("tag", sr.Tag)
	return q
}

// FetchConfirmations lists the pending confirmations for a signed request
// with tag "conf". The mobileconf endpoints require the session cookies on
// top of the signed query; without them the provider answers needauth.
func (c *Client) FetchConfirmations(ctx context.Context, sess entity.Session, sr entity.SignedRequest) ([]entity.Confirmation, error) {
	ctx, span := c.startSpan(ctx, "FetchConfirmations")
	defer span.End()

	endpoint := c.community + "/mobileconf/conf?" + signedQuery(sr).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("X-Requested-With", appRequestedWith)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", sessionCookies(sess))

	parsed, err := c.doConfirmationCall(req)
	if err != nil {
		return nil, err
	}

	confirmations := make([]entity.Confirmation, 0, len(parsed.Conf))
	for _, wc := range parsed.Conf {
		created := time.Time{}
		if secs, err := strconv.ParseInt(wc.Creation, 10, 64); err == nil && secs > 0 {
			created = time.Unix(secs, 0).UTC()
		}

		confirmations = append(confirmations, entity.Confirmation{
			ID:        wc.ID,
			Key:       wc.Nonce,
			Type:      wc.Type,
			TypeName:  wc.TypeName,
			CreatorID: wc.CreatorID,
			Headline:  wc.Headline,
			Summary:   wc.Summary,
			Icon:      wc.Icon,
			Multi:     wc.Multi,
			CreatedAt: created,
		})
	}

	return confirmations, nil
}

// ActConfirmations applies op to the given confirmations. The signed request
// must carry tag equal to op; the provider rejects signatures made for any
// other tag.
func (c *Client) ActConfirmations(ctx context.Context, sess entity.Session, sr entity.SignedRequest, op entity.ConfirmationOp, refs []entity.ConfirmationRef) error {
	ctx, span := c.startSpan(ctx, "ActConfirmations")
	defer span.End()

	form := url.Values{}
	form.Set("op", string(op))
	for _, ref := range refs {
		form.Add("cid[]", ref.ID)
		form.Add("ck[]", ref.Key)
	}

	endpoint := c.community + "/mobileconf/ajaxop?" + signedQuery(sr).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return goerror.NewServer(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("X-Requested-With", appRequestedWith)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", sessionCookies(sess))

	_, err = c.doConfirmationCall(req)
	return err
}

func (c *Client) doConfirmationCall(req *http.Request) (*confirmationsResponse, error) {
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

	var parsed confirmationsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, goerror.NewRemote(err, "malformed confirmation payload", goerror.CodeDataParse)
	}

	if !parsed.Success {
		switch {
		case strings.Contains(parsed.Message, signatureRejectedMarker):
			return nil, goerror.NewRemote(nil, "confirmation signature rejected by provider", goerror.CodeSignatureRejected)
		case parsed.NeedAuth:
			return nil, goerror.NewRemote(nil, "session is no longer valid, login required", goerror.CodeLoginRequired)
		default:
			msg := parsed.Message
			if msg == "" {
				msg = "provider reported an unspecified failure"
			}
			return nil, goerror.NewRemote(nil, msg, goerror.CodeRemoteProtocol)
		}
	}

	return &parsed, nil
}

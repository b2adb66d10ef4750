package inbound

import (
	"encoding/base64"
	"time"

	"steamvault/internal/guard/entity"
	"steamvault/internal/guard/usecase"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the authenticator workflows.
type HTTPEndpoint struct {
	uc uc
}

// AccountList returns the registered accounts.
func (h *HTTPEndpoint) AccountList(r *router.Request) (any, error) {
	resp, err := h.uc.AccountList(r.Context())
	if err != nil {
		return nil, err
	}

	accounts := make([]AccountResponse, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		accounts = append(accounts, AccountResponse{
			SteamID:           a.SteamID,
			AccountName:       a.AccountName,
			DeviceID:          a.DeviceID,
			Sealed:            a.Sealed,
			HasSharedSecret:   a.HasSharedSecret(),
			HasIdentitySecret: a.HasIdentitySecret(),
		})
	}

	return accounts, nil
}

// AccountImport registers a base64-encoded maFile.
func (h *HTTPEndpoint) AccountImport(r *router.Request) (any, error) {
	var req AccountImportRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(req.MaFile)
	if err != nil {
		return nil, goerror.NewInvalidFormat("ma_file must be base64 encoded")
	}

	resp, err := h.uc.AccountImport(r.Context(), usecase.AccountImportInput{MaFile: raw})
	if err != nil {
		return nil, err
	}

	return AccountResponse{
		SteamID:           resp.Account.SteamID,
		AccountName:       resp.Account.AccountName,
		DeviceID:          resp.Account.DeviceID,
		Sealed:            resp.Account.Sealed,
		HasSharedSecret:   resp.Account.HasSharedSecret(),
		HasIdentitySecret: resp.Account.HasIdentitySecret(),
	}, nil
}

// GetCode returns the current one-time code for an account.
func (h *HTTPEndpoint) GetCode(r *router.Request) (any, error) {
	resp, err := h.uc.GetCode(r.Context(), usecase.GetCodeInput{SteamID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return CodeResponse{Code: resp.Code, ValidForSeconds: resp.ValidFor}, nil
}

// ListConfirmations returns the pending confirmations for an account.
func (h *HTTPEndpoint) ListConfirmations(r *router.Request) (any, error) {
	resp, err := h.uc.ListConfirmations(r.Context(), usecase.ListConfirmationsInput{SteamID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	confirmations := make([]ConfirmationResponse, 0, len(resp.Confirmations))
	for _, c := range resp.Confirmations {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format(time.RFC3339)
		}

		confirmations = append(confirmations, ConfirmationResponse{
			ID:        c.ID,
			Key:       c.Key,
			Type:      c.Type,
			TypeName:  c.TypeName,
			CreatorID: c.CreatorID,
			Headline:  c.Headline,
			Summary:   c.Summary,
			Icon:      c.Icon,
			Multi:     c.Multi,
			CreatedAt: created,
		})
	}

	return confirmations, nil
}

// ActConfirmations applies allow or cancel to the selected confirmations.
func (h *HTTPEndpoint) ActConfirmations(r *router.Request) (any, error) {
	var req ActConfirmationsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	refs := make([]entity.ConfirmationRef, 0, len(req.Confirmations))
	for _, ref := range req.Confirmations {
		refs = append(refs, entity.ConfirmationRef{ID: ref.ID, Key: ref.Key})
	}

	resp, err := h.uc.ActConfirmations(r.Context(), usecase.ActConfirmationsInput{
		SteamID:       r.GetParam("id"),
		Op:            entity.ConfirmationOp(req.Op),
		Confirmations: refs,
	})
	if err != nil {
		return nil, err
	}

	return ActConfirmationsResponse{Acted: resp.Acted}, nil
}

// Login establishes a fresh session for an account.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Login(r.Context(), usecase.LoginInput{
		SteamID:  r.GetParam("id"),
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	return LoginResponse{}, nil
}

// Logout clears the stored session for an account.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{SteamID: r.GetParam("id")}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// SessionStatus reports stored-session validity and the tracked state.
func (h *HTTPEndpoint) SessionStatus(r *router.Request) (any, error) {
	resp, err := h.uc.SessionStatus(r.Context(), usecase.SessionStatusInput{SteamID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	out := SessionStatusResponse{
		State:  resp.State.String(),
		Valid:  resp.Valid,
		Reason: resp.Reason,
	}
	if !resp.CreatedAt.IsZero() {
		createdAt := resp.CreatedAt
		out.CreatedAt = &createdAt
	}
	if !resp.LastUsed.IsZero() {
		lastUsed := resp.LastUsed
		out.LastUsed = &lastUsed
	}

	return out, nil
}

// ListDevices returns the authorized devices, filtered and sorted.
func (h *HTTPEndpoint) ListDevices(r *router.Request) (any, error) {
	resp, err := h.uc.ListDevices(r.Context(), usecase.ListDevicesInput{
		SteamID: r.GetParam("steamid"),
		Filter:  entity.DeviceFilter(r.GetQuery("filter")),
	})
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceResponse, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		lastSeen, firstSeen := "", ""
		if !d.LastSeen.IsZero() {
			lastSeen = d.LastSeen.Format(time.RFC3339)
		}
		if !d.FirstSeen.IsZero() {
			firstSeen = d.FirstSeen.Format(time.RFC3339)
		}

		devices = append(devices, DeviceResponse{
			TokenID:         d.TokenID,
			Description:     d.Description,
			Category:        string(d.Category),
			Kind:            string(d.Kind),
			Location:        d.Location,
			LoggedIn:        d.LoggedIn,
			LastSeen:        lastSeen,
			FirstSeen:       firstSeen,
			IsNew:           d.IsNew,
			IsCurrentDevice: d.IsCurrentDevice,
		})
	}

	return devices, nil
}

// RemoveDevice handles per-device revocation. "all" maps to the
// sign-out-everywhere action; any real device id is unsupported by the
// provider and fails accordingly.
func (h *HTTPEndpoint) RemoveDevice(r *router.Request) (any, error) {
	steamID := r.GetParam("steamid")
	deviceID := r.GetParam("deviceId")

	if deviceID == "all" {
		if err := h.uc.RemoveAllDevices(r.Context(), usecase.RemoveAllDevicesInput{SteamID: steamID}); err != nil {
			return nil, err
		}
		return RemoveAllDevicesResponse{}, nil
	}

	if err := h.uc.RemoveDevice(r.Context(), usecase.RemoveDeviceInput{
		SteamID:  steamID,
		DeviceID: deviceID,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// RemoveAllDevices signs the account out everywhere.
func (h *HTTPEndpoint) RemoveAllDevices(r *router.Request) (any, error) {
	if err := h.uc.RemoveAllDevices(r.Context(), usecase.RemoveAllDevicesInput{SteamID: r.GetParam("steamid")}); err != nil {
		return nil, err
	}

	return RemoveAllDevicesResponse{}, nil
}

// SecurityStatus returns the account security summary.
func (h *HTTPEndpoint) SecurityStatus(r *router.Request) (any, error) {
	resp, err := h.uc.SecurityStatus(r.Context(), usecase.SecurityStatusInput{SteamID: r.GetParam("steamid")})
	if err != nil {
		return nil, err
	}

	return SecurityStatusResponse{
		AccountName:     resp.Status.AccountName,
		Email:           resp.Status.Email,
		PhoneHint:       resp.Status.PhoneHint,
		TwoFactorStatus: resp.Status.TwoFactorStatus,
	}, nil
}

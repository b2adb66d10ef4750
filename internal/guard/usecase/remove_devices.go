package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/pkg/goerror"
)

type RemoveDeviceInput struct {
	SteamID  string `validate:"required,steamid"`
	DeviceID string `validate:"required"`
}

// RemoveDevice never succeeds: the remote protocol offers no per-device
// revoke. This is a permanent capability gap, not a transient failure, so
// callers must not retry and should be directed to RemoveAllDevices.
func (s *Usecase) RemoveDevice(ctx context.Context, in RemoveDeviceInput) error {
	ctx, span := s.startSpan(ctx, "RemoveDevice")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := s.requireAccount(ctx, in.SteamID); err != nil {
		return err
	}

	return goerror.NewBusiness(
		"the provider offers no per-device revoke, sign out everywhere instead",
		goerror.CodeRevokeUnsupported)
}

type RemoveAllDevicesInput struct {
	SteamID string `validate:"required,steamid"`
}

// RemoveAllDevices issues the sign-out-everywhere action. On success the
// caller should re-fetch the device list; the action may also have
// invalidated the requesting session itself, which surfaces as
// login-required.
func (s *Usecase) RemoveAllDevices(ctx context.Context, in RemoveAllDevicesInput) error {
	ctx, span := s.startSpan(ctx, "RemoveAllDevices")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := s.requireAccount(ctx, in.SteamID); err != nil {
		return err
	}

	sess, err := s.usableSession(ctx, in.SteamID)
	if err != nil {
		return err
	}

	err = s.steam.RemoveAllDevices(ctx, *sess)
	s.settleOutcome(ctx, in.SteamID, err)
	if err != nil {
		slog.WarnContext(ctx, "failed to sign out everywhere", "steam_id", in.SteamID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "signed out everywhere", "steam_id", in.SteamID)
	return nil
}

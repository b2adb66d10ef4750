package usecase

import (
	"context"
	"log/slog"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
)

type ListDevicesInput struct {
	SteamID string              `validate:"required,steamid"`
	Filter  entity.DeviceFilter `validate:"omitempty,oneof=all active recent"`
}

type ListDevicesOutput struct {
	Devices []entity.Device
}

// ListDevices fetches the authorized-device list, normalizes it, and applies
// the requested filter and the default ordering (active devices first, then
// most recently seen).
func (s *Usecase) ListDevices(ctx context.Context, in ListDevicesInput) (*ListDevicesOutput, error) {
	ctx, span := s.startSpan(ctx, "ListDevices")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.requireAccount(ctx, in.SteamID); err != nil {
		return nil, err
	}

	sess, err := s.usableSession(ctx, in.SteamID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	devices, err := s.steam.FetchDevices(ctx, *sess, now)
	s.settleOutcome(ctx, in.SteamID, err)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch devices", "steam_id", in.SteamID, "error", err)
		return nil, err
	}

	filter := in.Filter
	if filter == "" {
		filter = entity.DeviceFilterAll
	}

	devices = entity.FilterDevices(devices, filter, now)
	entity.SortDevices(devices, now)

	return &ListDevicesOutput{Devices: devices}, nil
}

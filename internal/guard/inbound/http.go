package inbound

import (
	"context"

	"steamvault/internal/guard/usecase"
	"steamvault/internal/pkg/router"
)

type uc interface {
	AccountList(ctx context.Context) (*usecase.AccountListOutput, error)
	AccountImport(ctx context.Context, in usecase.AccountImportInput) (*usecase.AccountImportOutput, error)

	GetCode(ctx context.Context, in usecase.GetCodeInput) (*usecase.GetCodeOutput, error)
	ListConfirmations(ctx context.Context, in usecase.ListConfirmationsInput) (*usecase.ListConfirmationsOutput, error)
	ActConfirmations(ctx context.Context, in usecase.ActConfirmationsInput) (*usecase.ActConfirmationsOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) error
	Logout(ctx context.Context, in usecase.LogoutInput) error
	SessionStatus(ctx context.Context, in usecase.SessionStatusInput) (*usecase.SessionStatusOutput, error)

	ListDevices(ctx context.Context, in usecase.ListDevicesInput) (*usecase.ListDevicesOutput, error)
	RemoveDevice(ctx context.Context, in usecase.RemoveDeviceInput) error
	RemoveAllDevices(ctx context.Context, in usecase.RemoveAllDevicesInput) error
	SecurityStatus(ctx context.Context, in usecase.SecurityStatusInput) (*usecase.SecurityStatusOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Account registry
	r.GET("/api/v1/accounts", end.AccountList)
	r.POST("/api/v1/accounts", end.AccountImport)

	// Authenticator
	r.GET("/api/v1/accounts/:id/code", end.GetCode)
	r.GET("/api/v1/accounts/:id/confirmations", end.ListConfirmations)
	r.POST("/api/v1/accounts/:id/confirmations", end.ActConfirmations)

	// Session lifecycle
	r.POST("/api/v1/accounts/:id/login", end.Login)
	r.POST("/api/v1/accounts/:id/logout", end.Logout)
	r.GET("/api/v1/accounts/:id/session", end.SessionStatus)

	// Authorized devices & security
	r.GET("/api/v1/security/:steamid/devices", end.ListDevices)
	r.DELETE("/api/v1/security/:steamid/devices/:deviceId", end.RemoveDevice)
	r.POST("/api/v1/security/:steamid/devices/deauthorize", end.RemoveAllDevices)
	r.GET("/api/v1/security/:steamid/status", end.SecurityStatus)
}

package strcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"AccountName", "account_name"},
		{"SteamID", "steam_id"},
		{"HTTPError", "http_error"},
		{"DeviceID", "device_id"},
		{"MaFile", "ma_file"},
		{"already_snake", "already_snake"},
		{"X", "x"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ToLowerSnake(tc.in), "input %q", tc.in)
	}
}

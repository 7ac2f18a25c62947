package config

import (
	"strings"
	"testing"

	"github.com/mkarlen/keyden/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Updater
		wantErr string
	}{
		{
			name: "valid minimal",
			cfg:  &Updater{Owner: "someuser", Repo: "someapp"},
		},
		{
			name: "valid with channel and asset",
			cfg:  &Updater{Owner: "someuser", Repo: "someapp", Channel: types.ChannelBeta, AssetName: "someapp-linux-amd64"},
		},
		{
			name:    "missing owner",
			cfg:     &Updater{Repo: "someapp"},
			wantErr: "owner: is required",
		},
		{
			name:    "missing repo",
			cfg:     &Updater{Owner: "someuser"},
			wantErr: "repo: is required",
		},
		{
			name:    "invalid owner characters",
			cfg:     &Updater{Owner: "some user", Repo: "someapp"},
			wantErr: "owner: invalid value",
		},
		{
			name:    "invalid channel",
			cfg:     &Updater{Owner: "someuser", Repo: "someapp", Channel: "nightly"},
			wantErr: "channel:",
		},
		{
			name:    "asset name with path separator",
			cfg:     &Updater{Owner: "someuser", Repo: "someapp", AssetName: "../evil"},
			wantErr: "asset_name: must be a bare filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

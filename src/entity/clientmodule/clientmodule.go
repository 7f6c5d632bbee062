package clientmodule

import (
	"errors"
	"fmt"

	"github.com/endpointops/android-app-importer/src/entity/cryptography"
	"github.com/endpointops/android-app-importer/src/entity/platform"
)

var (
	ErrMissingField  = errors.New("client module field is required")
	ErrWrongPlatform = errors.New("client module targets an unsupported platform")
)

// Module describes the management API client for one tenant: where to get a
// token, where the API lives, and which credentials to present. Loaded from a
// manifest file before anything else runs.
type Module struct {
	TokenEndpoint string
	BaseURL       string
	TenantID      string
	ClientID      string
	ClientSecret  string
	Scope         string
	Platform      platform.PlatformType
}

func (m Module) Validate() error {
	required := map[string]string{
		"tokenEndpoint": m.TokenEndpoint,
		"baseUrl":       m.BaseURL,
		"tenantId":      m.TenantID,
		"clientId":      m.ClientID,
		"clientSecret":  m.ClientSecret,
	}
	for name, value := range required {
		if len(value) <= 0 {
			return fmt.Errorf("%s: %w", name, ErrMissingField)
		}
	}
	if m.Platform != platform.PlatformTypeAndroid {
		return fmt.Errorf("%s: %w", m.Platform, ErrWrongPlatform)
	}
	return nil
}

// Fingerprint identifies the client in logs without exposing credentials.
func (m Module) Fingerprint() string {
	return cryptography.MakeSHA1(m.TenantID + "/" + m.ClientID)[:12]
}

package inference

import (
	"fmt"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"

	"github.com/zalbiraw/ocichat/internal/config"
)

// configurationProvider returns the SDK credential source selected by
// cfg.AuthType. File-based credentials are read from the expanded config path
// under cfg.Profile; instance principals are fetched from the instance
// metadata service.
func configurationProvider(cfg config.Config) (common.ConfigurationProvider, error) {
	switch cfg.AuthType {
	case config.AuthInstancePrincipal:
		provider, err := auth.InstancePrincipalConfigurationProvider()
		if err != nil {
			return nil, fmt.Errorf("error getting instance principal provider: %w", err)
		}
		return provider, nil
	case config.AuthConfigFile, "":
		path, err := cfg.ExpandedConfigPath()
		if err != nil {
			return nil, err
		}
		provider, err := common.ConfigurationProviderFromFileWithProfile(path, cfg.Profile, "")
		if err != nil {
			return nil, fmt.Errorf("error reading profile %q from %s: %w", cfg.Profile, path, err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", cfg.AuthType)
	}
}

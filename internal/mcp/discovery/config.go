package discovery

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is where the protected-resource document lives when
// OAUTH_PROTECTED_RESOURCES_CONFIG_FILE is unset.
const DefaultConfigFile = ".oauth-protected-resource.json"

// ConfigFileEnv names the environment variable overriding the document
// location.
const ConfigFileEnv = "OAUTH_PROTECTED_RESOURCES_CONFIG_FILE"

// ConfigFilePath resolves the configured document path.
func ConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	return DefaultConfigFile
}

// LoadProtectedResource reads and validates the metadata document. The
// raw bytes are retained so the well-known endpoint serves the operator's
// file verbatim.
func LoadProtectedResource(path string) ([]byte, *ProtectedResourceMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading protected resource metadata: %w", err)
	}
	var meta ProtectedResourceMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("parsing protected resource metadata %s: %w", path, err)
	}
	if meta.Resource == "" {
		return nil, nil, fmt.Errorf("protected resource metadata %s has no resource field", path)
	}
	return raw, &meta, nil
}

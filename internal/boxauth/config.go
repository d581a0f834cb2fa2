package boxauth

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// AuthMode selects how the server obtains Box API credentials.
type AuthMode string

const (
	// ModeOAuth expects a pre-minted developer or OAuth access token.
	ModeOAuth AuthMode = "oauth"
	// ModeCCG performs the client credentials grant on behalf of an
	// enterprise or a managed user.
	ModeCCG AuthMode = "ccg"
	// ModeJWT signs a JWT assertion with an application private key.
	ModeJWT AuthMode = "jwt"
	// ModeMCPClient forwards the bearer token presented by the MCP
	// client on each request instead of holding server credentials.
	ModeMCPClient AuthMode = "mcp_client"
)

// ParseAuthMode validates a mode string from flags or environment.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case ModeOAuth, ModeCCG, ModeJWT, ModeMCPClient:
		return AuthMode(s), nil
	}
	return "", fmt.Errorf("unknown box auth mode %q (expected oauth, ccg, jwt or mcp_client)", s)
}

// SubjectType discriminates whom a CCG or JWT grant acts as.
type SubjectType string

const (
	SubjectEnterprise SubjectType = "enterprise"
	SubjectUser       SubjectType = "user"
)

// Environment holds every credential-related variable the server reads.
// All fields are optional at decode time; Resolve enforces what each
// auth mode actually needs.
type Environment struct {
	ClientID     string `env:"BOX_CLIENT_ID"`
	ClientSecret string `env:"BOX_CLIENT_SECRET"`

	SubjectType string `env:"BOX_SUBJECT_TYPE"`
	SubjectID   string `env:"BOX_SUBJECT_ID"`

	PublicKeyID          string `env:"BOX_PUBLIC_KEY_ID"`
	PrivateKey           string `env:"BOX_PRIVATE_KEY"`
	PrivateKeyPassphrase string `env:"BOX_PRIVATE_KEY_PASSPHRASE"`
	JWTConfigFile        string `env:"BOX_JWT_CONFIG_FILE"`
}

// LoadEnvironment decodes the process environment. Missing variables are
// not an error here; mode-specific validation happens in Resolve.
func LoadEnvironment() (Environment, error) {
	var env Environment
	if err := envdecode.Decode(&env); err != nil {
		return Environment{}, fmt.Errorf("decoding environment: %w", err)
	}
	return env, nil
}

// CredentialBundle is the validated output of Resolve. Exactly the fields
// relevant to Mode are populated.
type CredentialBundle struct {
	Mode AuthMode

	ClientID     string
	ClientSecret string

	SubjectType SubjectType
	SubjectID   string

	PublicKeyID          string
	PrivateKey           string
	PrivateKeyPassphrase string
}

// Resolve validates env for the given mode and produces a CredentialBundle.
// It never contacts the network; token acquisition happens later when a
// session is established.
func Resolve(mode AuthMode, env Environment) (CredentialBundle, error) {
	switch mode {
	case ModeOAuth:
		return resolveOAuth(env)
	case ModeCCG:
		return resolveCCG(env)
	case ModeJWT:
		return resolveJWT(env)
	case ModeMCPClient:
		// Credentials arrive with each MCP request.
		return CredentialBundle{Mode: ModeMCPClient}, nil
	}
	return CredentialBundle{}, fmt.Errorf("unknown box auth mode %q", mode)
}

// resolveOAuth validates the client pair used by the interactive
// authorization flow. The access token itself arrives with each request,
// so no token material is required here.
func resolveOAuth(env Environment) (CredentialBundle, error) {
	var missing []string
	if env.ClientID == "" {
		missing = append(missing, "BOX_CLIENT_ID")
	}
	if env.ClientSecret == "" {
		missing = append(missing, "BOX_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return CredentialBundle{}, newMissingError(ModeOAuth, missing)
	}
	return CredentialBundle{
		Mode:         ModeOAuth,
		ClientID:     env.ClientID,
		ClientSecret: env.ClientSecret,
	}, nil
}

func resolveCCG(env Environment) (CredentialBundle, error) {
	var missing []string
	if env.ClientID == "" {
		missing = append(missing, "BOX_CLIENT_ID")
	}
	if env.ClientSecret == "" {
		missing = append(missing, "BOX_CLIENT_SECRET")
	}
	if env.SubjectType == "" {
		missing = append(missing, "BOX_SUBJECT_TYPE")
	}
	if env.SubjectID == "" {
		missing = append(missing, "BOX_SUBJECT_ID")
	}
	if len(missing) > 0 {
		return CredentialBundle{}, newMissingError(ModeCCG, missing)
	}
	subjectType, subjectID, err := subject(ModeCCG, env)
	if err != nil {
		return CredentialBundle{}, err
	}
	return CredentialBundle{
		Mode:         ModeCCG,
		ClientID:     env.ClientID,
		ClientSecret: env.ClientSecret,
		SubjectType:  subjectType,
		SubjectID:    subjectID,
	}, nil
}

func resolveJWT(env Environment) (CredentialBundle, error) {
	if env.JWTConfigFile != "" {
		fileEnv, err := loadJWTConfigFile(env.JWTConfigFile)
		if err != nil {
			return CredentialBundle{}, newInvalidError(ModeJWT, "reading %s: %v", env.JWTConfigFile, err)
		}
		env = mergeJWTConfig(env, fileEnv)
	}

	var missing []string
	if env.ClientID == "" {
		missing = append(missing, "BOX_CLIENT_ID")
	}
	if env.ClientSecret == "" {
		missing = append(missing, "BOX_CLIENT_SECRET")
	}
	if env.PublicKeyID == "" {
		missing = append(missing, "BOX_PUBLIC_KEY_ID")
	}
	if env.PrivateKey == "" {
		missing = append(missing, "BOX_PRIVATE_KEY")
	}
	if env.PrivateKeyPassphrase == "" {
		missing = append(missing, "BOX_PRIVATE_KEY_PASSPHRASE")
	}
	if env.SubjectType == "" {
		missing = append(missing, "BOX_SUBJECT_TYPE")
	}
	if env.SubjectID == "" {
		missing = append(missing, "BOX_SUBJECT_ID")
	}
	if len(missing) > 0 {
		return CredentialBundle{}, newMissingError(ModeJWT, missing)
	}
	subjectType, subjectID, err := subject(ModeJWT, env)
	if err != nil {
		return CredentialBundle{}, err
	}
	return CredentialBundle{
		Mode:                 ModeJWT,
		ClientID:             env.ClientID,
		ClientSecret:         env.ClientSecret,
		SubjectType:          subjectType,
		SubjectID:            subjectID,
		PublicKeyID:          env.PublicKeyID,
		PrivateKey:           env.PrivateKey,
		PrivateKeyPassphrase: env.PrivateKeyPassphrase,
	}, nil
}

// subject maps the BOX_SUBJECT_TYPE discriminator to the Box subject the
// grant acts as. Exactly one of enterprise or user is ever set.
func subject(mode AuthMode, env Environment) (SubjectType, string, error) {
	switch SubjectType(env.SubjectType) {
	case SubjectEnterprise, SubjectUser:
		return SubjectType(env.SubjectType), env.SubjectID, nil
	}
	return "", "", newInvalidError(mode,
		"BOX_SUBJECT_TYPE must be %q or %q, got %q", SubjectEnterprise, SubjectUser, env.SubjectType)
}

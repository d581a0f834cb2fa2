package boxauth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// jwtConfigFile mirrors the JSON document the Box developer console emits
// when an app key pair is generated.
type jwtConfigFile struct {
	BoxAppSettings struct {
		ClientID     string `json:"clientID"`
		ClientSecret string `json:"clientSecret"`
		AppAuth      struct {
			PublicKeyID string `json:"publicKeyID"`
			PrivateKey  string `json:"privateKey"`
			Passphrase  string `json:"passphrase"`
		} `json:"appAuth"`
	} `json:"boxAppSettings"`
	EnterpriseID string `json:"enterpriseID"`
}

func loadJWTConfigFile(path string) (Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Environment{}, err
	}
	var cfg jwtConfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Environment{}, fmt.Errorf("parsing config JSON: %w", err)
	}
	return Environment{
		ClientID:             cfg.BoxAppSettings.ClientID,
		ClientSecret:         cfg.BoxAppSettings.ClientSecret,
		PublicKeyID:          cfg.BoxAppSettings.AppAuth.PublicKeyID,
		PrivateKey:           cfg.BoxAppSettings.AppAuth.PrivateKey,
		PrivateKeyPassphrase: cfg.BoxAppSettings.AppAuth.Passphrase,
		SubjectID:            cfg.EnterpriseID,
	}, nil
}

// mergeJWTConfig overlays file-derived key material onto env. Key material
// from the config file wins, matching how the hosted Box apps consume the
// document. The subject is the other way around: BOX_SUBJECT_TYPE and
// BOX_SUBJECT_ID always win, so a key file can still act as an
// impersonated user; the file's enterpriseID only fills in when the
// environment names no subject.
func mergeJWTConfig(env, file Environment) Environment {
	if file.ClientID != "" {
		env.ClientID = file.ClientID
	}
	if file.ClientSecret != "" {
		env.ClientSecret = file.ClientSecret
	}
	if file.PublicKeyID != "" {
		env.PublicKeyID = file.PublicKeyID
	}
	if file.PrivateKey != "" {
		env.PrivateKey = file.PrivateKey
	}
	if file.PrivateKeyPassphrase != "" {
		env.PrivateKeyPassphrase = file.PrivateKeyPassphrase
	}
	if env.SubjectType == "" {
		env.SubjectType = string(SubjectEnterprise)
	}
	if env.SubjectID == "" {
		env.SubjectID = file.SubjectID
	}
	return env
}

// ParsePrivateKey decodes a PEM private key as Box issues them. Keys from
// the developer console are encrypted PKCS#8; unencrypted PKCS#8 and
// PKCS#1 keys are accepted for completeness.
func ParsePrivateKey(pemData, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("private key is not valid PEM")
	}

	switch block.Type {
	case "ENCRYPTED PRIVATE KEY":
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypting private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKCS#8 private key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is %T, expected RSA", key)
		}
		return rsaKey, nil
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKCS#1 private key: %w", err)
		}
		return key, nil
	}
	return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
}

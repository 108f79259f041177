package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the key size used for lab node keys.
const DefaultBits = 4096

const (
	privateKeyFile = "id_rsa"
	publicKeyFile  = "id_rsa.pub"
)

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// AuthorizedKey returns the public key without the trailing newline, the
// form the linuxProfile keyData property expects.
func (k *KeyPair) AuthorizedKey() string {
	return strings.TrimSpace(string(k.PublicKey))
}

// Fingerprint returns the SHA256 fingerprint of the public key.
func (k *KeyPair) Fingerprint() (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(k.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(pub), nil
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// LoadOrGenerate returns the key pair stored in dir, generating and writing a
// new one if dir holds none. The private key is written with mode 0600.
func LoadOrGenerate(dir string, bits int) (*KeyPair, error) {
	privPath := filepath.Join(dir, privateKeyFile)
	pubPath := filepath.Join(dir, publicKeyFile)

	pub, pubErr := os.ReadFile(pubPath)
	priv, privErr := os.ReadFile(privPath)
	if pubErr == nil && privErr == nil {
		return &KeyPair{PrivateKey: priv, PublicKey: pub}, nil
	}
	if !errors.Is(pubErr, fs.ErrNotExist) && pubErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pubPath, pubErr)
	}

	kp, err := GenerateRSAKeyPair(bits)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(privPath, kp.PrivateKey, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, kp.PublicKey, 0o644); err != nil { //nolint:gosec // public key
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}
	return kp, nil
}

// ReadPublicKey reads and validates an existing authorized_keys style file.
// Only RSA keys are accepted.
func ReadPublicKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", fmt.Errorf("invalid public key in %s: %w", path, err)
	}
	if pub.Type() != ssh.KeyAlgoRSA {
		return "", fmt.Errorf("unsupported key type %s in %s: AKS requires ssh-rsa", pub.Type(), path)
	}
	return strings.TrimSpace(string(data)), nil
}

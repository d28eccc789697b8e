package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	credentialCodeCount  = 4
	credentialCodeLength = 5
)

var credentialCodeRegexp = regexp.MustCompile(`^[a-z]{5}$`)

var credentialAlphabet = []rune("abcdefghijklmnopqrstuvwxyz")

// Credential is a four-code passphrase enabling anonymous cross-device
// re-authentication. An infrastructure adapter maps it to a synthetic
// email+password pair; the core only defines the code structure.
type Credential struct {
	codes []string
}

// NewCredential builds a Credential from the given codes. Codes are lowercased
// before validation: there must be exactly four, each five lowercase letters.
func NewCredential(codes []string) (Credential, error) {
	normalized := make([]string, len(codes))
	for i, code := range codes {
		normalized[i] = strings.ToLower(code)
	}
	if len(normalized) != credentialCodeCount {
		return Credential{}, fmt.Errorf("code length must be 4: %w", ErrInvalidInput)
	}
	for _, code := range normalized {
		if !credentialCodeRegexp.MatchString(code) {
			return Credential{}, fmt.Errorf("invalid code format: %w", ErrInvalidInput)
		}
	}
	return Credential{codes: normalized}, nil
}

// GenerateCredential creates a Credential of four independent random codes.
func GenerateCredential() (Credential, error) {
	codes := make([]string, credentialCodeCount)
	max := big.NewInt(int64(len(credentialAlphabet)))
	for i := range codes {
		b := make([]rune, credentialCodeLength)
		for j := 0; j < credentialCodeLength; j++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return Credential{}, fmt.Errorf("generate credential code: %w", err)
			}
			b[j] = credentialAlphabet[n.Int64()]
		}
		codes[i] = string(b)
	}
	return Credential{codes: codes}, nil
}

// Codes returns a copy of the four codes in order.
func (c Credential) Codes() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// IsZero reports whether the credential is uninitialized.
func (c Credential) IsZero() bool { return len(c.codes) == 0 }

// String returns the codes joined with spaces, as shown to the user for pairing.
func (c Credential) String() string { return strings.Join(c.codes, " ") }

// CredentialRepository persists the locally stored pairing credential.
// It is opaque to the core beyond the Credential shape.
type CredentialRepository interface {
	// Get returns the stored credential, or ErrNotFound when none is stored.
	Get(ctx context.Context) (Credential, error)
	Set(ctx context.Context, credential Credential) error
	// Create generates, stores, and returns a fresh credential.
	Create(ctx context.Context) (Credential, error)
	Delete(ctx context.Context) error
}

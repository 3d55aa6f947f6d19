package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownHashFormat = errors.New("auth: unknown password hash format")
	// ErrPasswordTooLong is returned when a hasher cannot take the password
	// as given. bcrypt reads at most 72 bytes.
	ErrPasswordTooLong = errors.New("auth: password too long for hasher")
)

// bcryptMaxBytes is the input limit of bcrypt
const bcryptMaxBytes = 72

// PasswordHasher hashes and verifies passwords with a slow, salted one-way hash
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// Argon2Params are the Argon2id cost factors
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are the production cost factors. Verify reads the
// factors back from each hash, so changing them keeps old hashes valid.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2idHasher produces PHC strings: $argon2id$v=19$m=..,t=..,p=..$salt$key
type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2idHasher(p *Argon2Params) *Argon2idHasher {
	if p == nil {
		p = &DefaultArgon2Params
	}
	return &Argon2idHasher{params: *p}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: failed to read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(encoded, password string) (bool, error) {
	p, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeArgon2id(encoded string) (*Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, ErrUnknownHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("auth: bad argon2id version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("auth: incompatible argon2 version %d", version)
	}

	p := &Argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("auth: bad argon2id params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("auth: bad argon2id salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("auth: bad argon2id key: %w", err)
	}
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

// BcryptHasher wraps golang.org/x/crypto/bcrypt. Passwords longer than 72
// bytes fail with ErrPasswordTooLong.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > bcryptMaxBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("auth: bcrypt failed: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// MultiHasher hashes with primary and verifies whichever format a stored
// hash is in, so argon2id and bcrypt records can coexist.
type MultiHasher struct {
	primary PasswordHasher
	argon   *Argon2idHasher
	bcrypt  *BcryptHasher
}

func NewMultiHasher(primary PasswordHasher, argon *Argon2idHasher, bc *BcryptHasher) *MultiHasher {
	return &MultiHasher{primary: primary, argon: argon, bcrypt: bc}
}

// NewPasswordHasher builds the configured hasher ("argon2id" or "bcrypt")
func NewPasswordHasher(name string) (*MultiHasher, error) {
	argon := NewArgon2idHasher(nil)
	bc := NewBcryptHasher(12)

	switch strings.ToLower(name) {
	case "", "argon2id":
		return NewMultiHasher(argon, argon, bc), nil
	case "bcrypt":
		return NewMultiHasher(bc, argon, bc), nil
	default:
		return nil, fmt.Errorf("auth: unknown password hasher %q", name)
	}
}

func (h *MultiHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *MultiHasher) Verify(hash, password string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return h.argon.Verify(hash, password)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return h.bcrypt.Verify(hash, password)
	default:
		return false, ErrUnknownHashFormat
	}
}

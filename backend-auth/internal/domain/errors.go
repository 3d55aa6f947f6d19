package domain

import "errors"

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrWeakPassword       = errors.New("password does not meet length policy")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrUserNotFound       = errors.New("user not found")
)

// PasswordPolicyError carries the length bounds a rejected password failed.
// It matches ErrWeakPassword under errors.Is.
type PasswordPolicyError struct {
	Min int
	Max int
}

func (e *PasswordPolicyError) Error() string {
	return ErrWeakPassword.Error()
}

func (e *PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

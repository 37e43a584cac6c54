package service

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateIdentity = errors.New("username or email already taken")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailUnverified    = errors.New("email not verified")

	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("token not found")

	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrInvalidCode              = errors.New("invalid verification code")
	ErrCodeExpired              = errors.New("verification code has expired")
	ErrRateLimited              = errors.New("please wait before requesting another verification email")

	ErrAlreadyAssigned = errors.New("user already has this role")
	ErrNotAssigned     = errors.New("user does not have this role")
	ErrAlreadyGranted  = errors.New("role already has this permission")
	ErrNotGranted      = errors.New("role does not have this permission")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

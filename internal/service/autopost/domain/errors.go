// autopost-service/internal/domain/errors.go
package domain

import "errors"

var (
	ErrJobNotFound       = errors.New("posting job not found")
	ErrSettingsNotFound  = errors.New("page posting settings not found")
	ErrIllegalTransition = errors.New("illegal posting job status transition")
	ErrUnknownFrequency  = errors.New("unknown posting frequency")
	ErrInvalidPostTime   = errors.New("post time must be in HH:MM format")
	ErrInvalidTimezone   = errors.New("unknown timezone")
)

package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrGenerationEmpty  = errors.New("provider returned no image")
	ErrGenerationFailed = errors.New("image generation failed")
	ErrUploadFailed     = errors.New("object upload failed")
	ErrPersistFailed    = errors.New("record persistence failed")
	ErrMalformedRecord  = errors.New("stored media url is malformed")
	ErrDeleteFailed     = errors.New("object deletion failed")
)

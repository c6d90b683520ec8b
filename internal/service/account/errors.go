package account

import "github.com/Alijeyrad/salonora_backend/pkg/apperr"

var (
	ErrProviderNotFound = apperr.New(apperr.CodeNotFound, "provider not found")
	ErrInvalidProvider  = apperr.New(apperr.CodeInvalidInput, "invalid provider")
)

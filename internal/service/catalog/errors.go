package catalog

import "github.com/Alijeyrad/salonora_backend/pkg/apperr"

var (
	ErrServiceNotFound = apperr.New(apperr.CodeNotFound, "service not found")
	ErrInvalidService  = apperr.New(apperr.CodeInvalidInput, "invalid service")
)

package repo

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("overlapping active booking")
	ErrPrecondition = errors.New("record not in expected state")
)

package audit

import "errors"

var (
	ErrDuplicateEntry = errors.New("audit entry already exists")
	ErrInvalidEntry   = errors.New("audit entry violates storage constraints")
)

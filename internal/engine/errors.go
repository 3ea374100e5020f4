package engine

import "errors"

var (
	ErrUnknownEngine = errors.New("unknown engine")
	ErrDuplicate     = errors.New("engine already registered")
	ErrShape         = errors.New("prediction shape mismatch")
	ErrNoPath        = errors.New("engine has no path parameter")
	ErrParamConflict = errors.New("conflicting parameters")
)

package service

import "errors"

// ErrInvalid marks input the caller must fix.
var ErrInvalid = errors.New("invalid input")

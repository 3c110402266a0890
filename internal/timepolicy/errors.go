package timepolicy

import "errors"

var ErrInvalidDate = errors.New("invalid date")

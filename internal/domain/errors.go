package domain

import "errors"

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrAlertAlreadyRecorded = errors.New("alert already recorded within the dedup window")
	ErrRunInProgress        = errors.New("a deadline check is already running")
)

package service

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrAlreadyRunning     = errors.New("scraper is already running")
	ErrStopNotImplemented = errors.New("stopping scraper jobs not implemented yet")
)

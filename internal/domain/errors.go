package domain

import "errors"

// ErrNegativeAmount is returned when a monetary input is below zero.
var ErrNegativeAmount = errors.New("domain: amount must not be negative")

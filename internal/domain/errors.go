package domain

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrNotUnique = errors.New("record not unique")
var ErrInvalidData = errors.New("invalid data")
var ErrNoPermission = errors.New("no permission")

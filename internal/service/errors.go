package service

import "errors"

var ErrNotFound = errors.New("error not found")

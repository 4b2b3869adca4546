package models

import "errors"

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidRole возвращается при некорректной роли в запросе списка
	ErrInvalidRole = errors.New("invalid actor role")
)

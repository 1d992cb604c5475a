package models

import "errors"

var (
	// ErrNotFound — запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушено ограничение уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict — запись изменена параллельным запросом.
	ErrConflict = errors.New("concurrent modification")
	// ErrValidation — входные данные нарушают ограничения модели.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials — неверный логин или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

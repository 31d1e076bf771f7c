package entity

import "errors"

var (
	ErrNotFound     = errors.New("registro não encontrado")
	ErrDuplicateKey = errors.New("registro duplicado")
)

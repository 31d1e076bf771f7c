package asaas

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable marca falhas transitórias (rede, timeout, 5xx).
var ErrUnavailable = errors.New("asaas indisponível")

type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("api asaas rejeitou (status %d): %s", e.StatusCode, e.Body)
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrUnavailable && e.StatusCode >= http.StatusInternalServerError
}

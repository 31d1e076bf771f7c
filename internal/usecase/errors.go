package usecase

import "errors"

// DomainError representa uma falha de regra de negócio ou de dado local
// (não adianta repetir a chamada).
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is compara pelo Code, para errors.Is casar com os sentinelas abaixo.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError representa falha de infraestrutura (banco, gateway). O
// chamador pode tentar de novo.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func (e *TechnicalError) Is(target error) bool {
	t, ok := target.(*TechnicalError)
	return ok && t.Code == e.Code
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var (
	ErrCheckoutNotFound = &DomainError{Code: "CHECKOUT_NOT_FOUND", Message: "checkout not found"}
	ErrInvalidCheckout  = &DomainError{Code: "INVALID_CHECKOUT_ID", Message: "checkoutId is required"}

	ErrGatewayUnavailable = &TechnicalError{Code: "GATEWAY_UNAVAILABLE", Message: "payment gateway unavailable"}
)

func technical(code, message string, err error) error {
	return &TechnicalError{Code: code, Message: message, Err: err}
}

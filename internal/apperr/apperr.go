// Package apperr define os erros de aplicação com status HTTP associado.
// Handlers retornam *Error e o writer central em httpapi decide o corpo da resposta.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Códigos expostos no campo "error" das respostas
const (
	CodeValidation   = "Validation Error"
	CodeUnauthorized = "Unauthorized"
	CodeForbidden    = "Forbidden"
	CodeNotFound     = "Not Found"
	CodeConflict     = "Conflict"
	CodeRateLimited  = "Too Many Requests"
	CodeInternal     = "Internal Server Error"
)

// Error carrega status, código e mensagem. Operational indica que a mensagem
// foi escrita para o cliente e pode ser exibida mesmo em produção.
type Error struct {
	Status      int
	Code        string
	Message     string
	Operational bool
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsValidation informa se é erro de validação (400 com mensagem sempre visível)
func (e *Error) IsValidation() bool { return e.Code == CodeValidation }

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg, Operational: true}
}

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "Bad Request", Message: msg, Operational: true}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg, Operational: true}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: msg, Operational: true}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg, Operational: true}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: msg, Operational: true}
}

func RateLimited(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: msg, Operational: true}
}

// Internal embrulha uma falha inesperada; a mensagem é ocultada em produção
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg, Err: err}
}

// From converte qualquer erro em *Error. Erros desconhecidos viram 500 com a
// mensagem original (que será ocultada em produção).
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: err.Error(), Err: err}
}

// StatusOf retorna o status HTTP de err (500 quando desconhecido)
func StatusOf(err error) int {
	if ae := From(err); ae != nil {
		return ae.Status
	}
	return http.StatusOK
}

// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// FromError подбирает HTTP-код и текст ответа для ошибки сервисного слоя.
// fallback используется для неизвестных ошибок, чтобы не раскрывать внутренности.
func FromError(err error, fallback string) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, subscription.ErrInvalidTransition):
		return http.StatusBadRequest, Error(transitionMessage(err))
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, Error("resource was modified concurrently, retry")
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, Error("already exists")
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, Error("invalid input")
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, jwt.ErrInvalidToken):
		return http.StatusUnauthorized, Error("invalid credentials")
	default:
		return http.StatusInternalServerError, Error(fallback)
	}
}

// transitionMessage оставляет от цепочки ошибок только текст правила перехода.
func transitionMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, subscription.ErrInvalidTransition.Error()); i >= 0 {
		return msg[i:]
	}
	return subscription.ErrInvalidTransition.Error()
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be exactly %s characters long", err.Field(), err.Param()))
		case "excludesall":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s contains forbidden characters", err.Field()))
		case "min", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// Validate проверяет структуру и возвращает готовый ответ при ошибке.
// Ошибки, не являющиеся ошибками валидации полей, описываются общим текстом.
func Validate(v *validator.Validate, req any) (Response, bool) {
	err := v.Struct(req)
	if err == nil {
		return Response{}, true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ValidationError(verrs), false
	}
	return Response{Status: StatusError, Error: "invalid request"}, false
}

package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	WebhookErrorConfigurationMissing = "WEBHOOK_CONFIGURATION_MISSING"
	WebhookErrorValidationFailed     = "WEBHOOK_VALIDATION_FAILED"
	WebhookErrorDeliveryFailed       = "WEBHOOK_DELIVERY_FAILED"
	WebhookErrorBadInput             = "WEBHOOK_BAD_INPUT"
	WebhookErrorNotFound             = "WEBHOOK_NOT_FOUND"
	WebhookErrorInternal             = "WEBHOOK_INTERNAL_ERROR"
)

const (
	metaSetting       = "setting"
	metaMissingFields = "missing_fields"
	metaStatusCode    = "status_code"
	metaResponseBody  = "response_body"
)

// maxErrorBodyBytes bounds the response body copied into error metadata.
const maxErrorBodyBytes = 4096

func ConfigurationMissingError(setting string, scope ScopeRef) error {
	return goerrors.New(
		fmt.Sprintf("core: webhook %s is not configured for scope %s", setting, scope.String()),
		goerrors.CategoryOperation,
	).
		WithCode(http.StatusPreconditionFailed).
		WithTextCode(WebhookErrorConfigurationMissing).
		WithMetadata(map[string]any{
			metaSetting: setting,
			"scope":     scope.String(),
		})
}

func ValidationFailureError(missing []string) error {
	fieldErrors := make([]goerrors.FieldError, 0, len(missing))
	for _, field := range missing {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   field,
			Message: "required field is empty",
		})
	}
	return goerrors.NewValidation(
		"core: webhook payload is missing required fields: "+strings.Join(missing, ", "),
		fieldErrors...,
	).
		WithCode(http.StatusBadRequest).
		WithTextCode(WebhookErrorValidationFailed).
		WithSeverity(goerrors.SeverityError).
		WithMetadata(map[string]any{
			metaMissingFields: append([]string(nil), missing...),
		})
}

// DeliveryFailureError reports a non-2xx response. The status code is kept as
// the envelope code.
func DeliveryFailureError(statusCode int, body []byte) error {
	return goerrors.New(
		fmt.Sprintf("core: webhook endpoint responded with status %d", statusCode),
		goerrors.CategoryExternal,
	).
		WithCode(statusCode).
		WithTextCode(WebhookErrorDeliveryFailed).
		WithMetadata(map[string]any{
			metaStatusCode:   statusCode,
			metaResponseBody: truncateBody(body),
		})
}

// DeliveryTransportError reports a failure before any response was read.
func DeliveryTransportError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "core: webhook request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(WebhookErrorDeliveryFailed)
}

func IsConfigurationMissing(err error) bool {
	return hasTextCode(err, WebhookErrorConfigurationMissing)
}

func IsValidationFailure(err error) bool {
	return hasTextCode(err, WebhookErrorValidationFailed)
}

func IsDeliveryFailure(err error) bool {
	return hasTextCode(err, WebhookErrorDeliveryFailed)
}

// DeliveryStatusCode returns the HTTP status carried by a delivery failure
// that received a response.
func DeliveryStatusCode(err error) (int, bool) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != WebhookErrorDeliveryFailed {
		return 0, false
	}
	code, ok := rich.Metadata[metaStatusCode].(int)
	return code, ok
}

func DeliveryResponseBody(err error) string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != WebhookErrorDeliveryFailed {
		return ""
	}
	body, _ := rich.Metadata[metaResponseBody].(string)
	return body
}

func MissingFields(err error) []string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != WebhookErrorValidationFailed {
		return nil
	}
	fields, _ := rich.Metadata[metaMissingFields].([]string)
	return append([]string(nil), fields...)
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes])
	}
	return string(body)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, WebhookErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, WebhookErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return WebhookErrorBadInput
	case goerrors.CategoryValidation:
		return WebhookErrorValidationFailed
	case goerrors.CategoryNotFound:
		return WebhookErrorNotFound
	case goerrors.CategoryExternal:
		return WebhookErrorDeliveryFailed
	default:
		return WebhookErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package transport

import (
	"errors"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-shipment-webhook/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.WebhookErrorBadInput
	case goerrors.CategoryExternal:
		return core.WebhookErrorDeliveryFailed
	default:
		return core.WebhookErrorInternal
	}
}

// redactedTarget keeps scheme and host so path or query tokens stay out of errors.
func redactedTarget(target *url.URL) string {
	if target == nil || target.Host == "" {
		return ""
	}
	return target.Scheme + "://" + target.Host
}

func redactURLError(err error, target *url.URL) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: redactedTarget(target), Err: urlErr.Err}
}

package core

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	operationDispatch = "dispatch"
	operationPreview  = "preview"

	SkipReasonDisabled = "disabled"
)

type DispatchResult struct {
	DispatchID   string
	Sent         bool
	Skipped      bool
	SkipReason   string
	StatusCode   int
	Signature    string
	ResponseBody []byte
	Duration     time.Duration
}

type Preview struct {
	Payload   Payload
	Body      []byte
	Signature string
	Settings  Settings
}

// DispatchShipment runs the single-shot webhook flow for one shipment:
// enabled check, destination lookup, payload build, signing, one POST and
// status evaluation. Nothing is retried.
func (s *Service) DispatchShipment(ctx context.Context, shipment *Shipment) (result DispatchResult, err error) {
	if s == nil {
		return DispatchResult{}, serviceNilError()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := s.clock()
	result.DispatchID = uuid.NewString()
	fields := shipmentFields(shipment)
	fields["dispatch_id"] = result.DispatchID
	defer func() {
		result.Duration = s.clock().Sub(startedAt)
		s.observeOperation(ctx, startedAt, operationDispatch, err, fields)
	}()

	if shipment == nil {
		return result, s.mapError(ErrShipmentRequired)
	}

	scope := shipment.Scope()
	settings, err := s.loadSettings(ctx, scope)
	if err != nil {
		return result, err
	}
	if !settings.Enabled {
		result.Skipped = true
		result.SkipReason = SkipReasonDisabled
		fields["skipped"] = SkipReasonDisabled
		return result, nil
	}

	destination := strings.TrimSpace(settings.WebhookURL)
	if destination == "" {
		return result, ConfigurationMissingError("webhook_url", scope)
	}
	fields["webhook_host"] = webhookLogTarget(destination)

	prepared, err := s.prepare(ctx, shipment, settings)
	if err != nil {
		return result, err
	}
	result.Signature = prepared.Signature

	if s.transport == nil {
		return result, s.mapError(goerrors.New("core: webhook transport is not configured", goerrors.CategoryInternal))
	}
	response, err := s.transport.Do(ctx, TransportRequest{
		Method: http.MethodPost,
		URL:    destination,
		Headers: map[string]string{
			HeaderContentType: ContentTypeJSON,
			HeaderSignature:   prepared.Signature,
		},
		Body: prepared.Body,
		Metadata: map[string]any{
			"shipment_id": shipment.ID,
			"dispatch_id": result.DispatchID,
		},
	})
	if err != nil {
		return result, DeliveryTransportError(err)
	}

	result.StatusCode = response.StatusCode
	result.ResponseBody = response.Body
	fields["status_code"] = response.StatusCode
	if !isSuccessStatus(response.StatusCode) {
		return result, DeliveryFailureError(response.StatusCode, response.Body)
	}

	result.Sent = true
	fields["response_body"] = truncateBody(response.Body)
	return result, nil
}

// DispatchShipmentByID loads the shipment aggregate and dispatches it.
func (s *Service) DispatchShipmentByID(ctx context.Context, shipmentID string) (DispatchResult, error) {
	if s == nil {
		return DispatchResult{}, serviceNilError()
	}
	shipment, err := s.LoadShipment(ctx, shipmentID)
	if err != nil {
		return DispatchResult{}, err
	}
	return s.DispatchShipment(ctx, shipment)
}

func (s *Service) LoadShipment(ctx context.Context, shipmentID string) (*Shipment, error) {
	if s == nil {
		return nil, serviceNilError()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(shipmentID) == "" {
		return nil, s.mapError(goerrors.New("core: shipment id is required", goerrors.CategoryBadInput))
	}
	if s.shipmentLoader == nil {
		return nil, s.mapError(s.errorFactory("core: shipment loader is not configured", goerrors.CategoryInternal))
	}
	shipment, err := s.shipmentLoader.LoadShipment(ctx, strings.TrimSpace(shipmentID))
	if err != nil {
		return nil, s.mapError(err)
	}
	if shipment == nil {
		return nil, s.mapError(ErrShipmentNotFound)
	}
	return shipment, nil
}

// PreviewShipment builds and signs the payload for a shipment without any
// network call. The enabled flag and destination are not consulted.
func (s *Service) PreviewShipment(ctx context.Context, shipment *Shipment) (preview Preview, err error) {
	if s == nil {
		return Preview{}, serviceNilError()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := s.clock()
	fields := shipmentFields(shipment)
	defer func() {
		s.observeOperation(ctx, startedAt, operationPreview, err, fields)
	}()

	if shipment == nil {
		return Preview{}, s.mapError(ErrShipmentRequired)
	}
	settings, err := s.loadSettings(ctx, shipment.Scope())
	if err != nil {
		return Preview{}, err
	}
	prepared, err := s.prepare(ctx, shipment, settings)
	if err != nil {
		return Preview{}, err
	}
	prepared.Settings = settings
	prepared.Settings.SecretKey = ""
	return prepared, nil
}

func (s *Service) prepare(ctx context.Context, shipment *Shipment, settings Settings) (Preview, error) {
	payload, err := s.payloadBuilder.Build(shipment, settings.Locale)
	if err != nil {
		return Preview{}, s.mapError(err)
	}
	if settings.RequireFields {
		if err := ValidateRequiredFields(payload); err != nil {
			return Preview{}, err
		}
	}

	secret, err := s.resolveSecret(ctx, settings.SecretKey)
	if err != nil {
		return Preview{}, err
	}
	body, signature, err := SignPayload(s.signer, secret, payload)
	if err != nil {
		return Preview{}, s.mapError(err)
	}
	return Preview{Payload: payload, Body: body, Signature: signature}, nil
}

func (s *Service) loadSettings(ctx context.Context, scope ScopeRef) (Settings, error) {
	if s.settingsReader == nil {
		return Settings{}, s.mapError(goerrors.Wrap(ErrSettingsNotLoaded, goerrors.CategoryInternal, "core: load webhook settings"))
	}
	settings, err := s.settingsReader.Settings(ctx, scope)
	if err != nil {
		return Settings{}, s.mapError(err)
	}
	return settings, nil
}

func (s *Service) resolveSecret(ctx context.Context, stored string) (string, error) {
	if stored == "" || s.secretResolver == nil {
		return stored, nil
	}
	secret, err := s.secretResolver.ResolveSecret(ctx, stored)
	if err != nil {
		return "", s.mapError(goerrors.Wrap(err, goerrors.CategoryInternal, "core: resolve webhook secret_key"))
	}
	return secret, nil
}

func (s *Service) clock() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now()
}

func isSuccessStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func shipmentFields(shipment *Shipment) map[string]any {
	fields := map[string]any{}
	if shipment == nil {
		return fields
	}
	fields["shipment_id"] = shipment.ID
	fields["shipment_increment_id"] = shipment.IncrementID
	fields["order_id"] = shipment.OrderID()
	fields["scope"] = shipment.Scope().String()
	return fields
}

// webhookLogTarget keeps only scheme and host; path and query may carry tokens.
func webhookLogTarget(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "invalid"
	}
	return parsed.Scheme + "://" + parsed.Host
}

func serviceNilError() error {
	return goerrors.New("core: service is nil", goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(WebhookErrorInternal)
}

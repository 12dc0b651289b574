package shipwebhook

import (
	"fmt"

	"github.com/goliatone/go-shipment-webhook/adapters/gologger"
	shipcommand "github.com/goliatone/go-shipment-webhook/command"
	"github.com/goliatone/go-shipment-webhook/core"
	shipquery "github.com/goliatone/go-shipment-webhook/query"
)

type CommandQueryService interface {
	shipcommand.DispatchService
	shipquery.PayloadPreviewer
}

type Commands struct {
	ShipmentStatusChanged *shipcommand.ShipmentStatusChangedCommand
	DispatchWebhook       *shipcommand.DispatchShipmentWebhookCommand
}

type Queries struct {
	PreviewPayload *shipquery.PreviewPayloadQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	logger core.Logger
}

// WithEventLogger sets the logger used by the status-changed handler. By
// default it derives "<service_name>.command" from the service dependencies.
func WithEventLogger(logger core.Logger) FacadeOption {
	return func(options *facadeOptions) {
		options.logger = logger
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("shipwebhook: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = resolveEventLogger(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		ShipmentStatusChanged: shipcommand.NewShipmentStatusChangedCommand(service, logger),
		DispatchWebhook:       shipcommand.NewDispatchShipmentWebhookCommand(service),
	}
	facade.queries = Queries{
		PreviewPayload: shipquery.NewPreviewPayloadQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveEventLogger(service CommandQueryService) core.Logger {
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
		Config() core.Config
	})
	if !ok {
		return gologger.Component("", "", nil, nil)
	}
	deps := provider.Dependencies()
	return gologger.Component(provider.Config().ServiceName, "command", deps.LoggerProvider, deps.Logger)
}

package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-shipment-webhook/core"
)

var (
	_ gocmd.Querier[PreviewPayloadMessage, core.Preview] = (*PreviewPayloadQuery)(nil)

	_ PayloadPreviewer = (*core.Service)(nil)
)

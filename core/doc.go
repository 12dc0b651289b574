// Package core contains the shipment webhook domain model, payload assembly,
// signing and the single-shot dispatch flow. Storage, transport and command
// adapters depend on this package; core must not depend on them.
package core

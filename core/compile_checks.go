package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ WebhookService  = (*Service)(nil)
	_ Signer          = HMACSigner{}
	_ SettingsReader  = SettingsReaderFunc(nil)
	_ MetricsRecorder = NopMetricsRecorder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)

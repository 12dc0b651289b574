package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// Component resolves the logger for a sub-component, named "<base>.<component>".
func Component(base string, component string, provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	name := strings.TrimSpace(base)
	if component = strings.TrimSpace(component); component != "" {
		if name != "" {
			name += "."
		}
		name += component
	}
	_, resolved := Resolve(name, provider, logger)
	return glog.Ensure(resolved)
}

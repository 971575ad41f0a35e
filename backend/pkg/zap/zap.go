// Package `zap` wraps Zap logging.
//
// We use the sugared logger with its structured `Levelw(msg, kv...)`
// functions, which match the `Logger` interfaces of the other packages.
package zap

import (
	"fmt"

	"go.uber.org/zap"
)

type Logger = zap.SugaredLogger

func NewProduction() (*Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func NewDevelopment() (*Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// `New()` returns the logger for a `--log` mode: `prod` or `dev`.
func New(mode string) (*Logger, error) {
	switch mode {
	case "prod":
		return NewProduction()
	case "dev":
		return NewDevelopment()
	default:
		return nil, fmt.Errorf("invalid zap log mode `%s`", mode)
	}
}

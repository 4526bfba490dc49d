package logger

import (
	"go.uber.org/zap"
)

// New builds a JSON logger writing to stderr at the given verbosity.
func New(verbosity string) (*zap.Logger, error) {
	return NewWithEncoding(verbosity, "json")
}

// NewWithEncoding is like New but lets the caller pick the zap encoding,
// "json" or "console".
func NewWithEncoding(verbosity, encoding string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	config.Encoding = encoding
	if encoding == "console" {
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.DisableStacktrace = true
	}
	return config.Build()
}

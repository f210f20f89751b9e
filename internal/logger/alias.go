package logger

import "go.uber.org/zap"

type Field = zap.Field

var (
	String   = zap.String
	Int      = zap.Int
	Duration = zap.Duration
	ErrorF   = zap.Error
	Any      = zap.Any
)

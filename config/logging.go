package config

import "go.uber.org/zap/zapcore"

// LogEncoder defines a log encoder kind.
type LogEncoder = string

const (
	defaultLoggingLevel = zapcore.InfoLevel
	// ConsoleLogEncoder represents logging with plain text.
	ConsoleLogEncoder LogEncoder = "console"
	// JSONLogEncoder represents logging with JSON.
	JSONLogEncoder LogEncoder = "json"
)

// LoggerConfig holds the logging level for each module.
type LoggerConfig struct {
	Encoder LogEncoder `mapstructure:"log-encoder"`

	AppLoggerLevel        zapcore.Level `mapstructure:"app"`
	P2PLoggerLevel        zapcore.Level `mapstructure:"p2p"`
	SQLLoggerLevel        zapcore.Level `mapstructure:"sql"`
	IssuerLoggerLevel     zapcore.Level `mapstructure:"issuer"`
	VerifierLoggerLevel   zapcore.Level `mapstructure:"verifier"`
	GossipLoggerLevel     zapcore.Level `mapstructure:"gossip"`
	ExchangeLoggerLevel   zapcore.Level `mapstructure:"exchange"`
	TradeLimitLoggerLevel zapcore.Level `mapstructure:"tradelimit"`
	PruneLoggerLevel      zapcore.Level `mapstructure:"prune"`
}

func DefaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder:               ConsoleLogEncoder,
		AppLoggerLevel:        defaultLoggingLevel,
		P2PLoggerLevel:        zapcore.WarnLevel,
		SQLLoggerLevel:        defaultLoggingLevel,
		IssuerLoggerLevel:     defaultLoggingLevel,
		VerifierLoggerLevel:   defaultLoggingLevel,
		GossipLoggerLevel:     defaultLoggingLevel,
		ExchangeLoggerLevel:   defaultLoggingLevel,
		TradeLimitLoggerLevel: zapcore.WarnLevel,
		PruneLoggerLevel:      defaultLoggingLevel,
	}
}

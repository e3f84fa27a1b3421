// Package logger provides structured logging for the HTTP client using
// zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and request-scoped fields carried on the context.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("httpclient")
//	log.Debug("dispatch", logger.Fields("method", "GET", "url", u))
package logger

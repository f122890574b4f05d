// Package logger builds the zap logger shared by the server, the pollers and
// the CLI commands.
//
// Level and Format come from the log section of the configuration. "debug"
// switches to zap's development preset; "console" renders colored,
// human-readable lines instead of JSON.
//
// Two helpers attach correlation fields:
//
//	l := logger.WithRayID(log, c)          // per HTTP request
//	l := logger.WithTraceID(log, traceID)  // per sync tick
package logger

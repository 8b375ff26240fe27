// Package log constructs the application loggers.
//
// All components log through log/slog. The CLI uses the text handler on
// stderr; the server can switch to the JSON handler for log aggregation.
// Verbosity is a single switch: the default level keeps routine cache and
// refresh chatter out of the output, --verbose turns everything on.
package log

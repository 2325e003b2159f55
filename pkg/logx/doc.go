// Package logx configures the daemon's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Debug/trace volume bounded (rate-limited sink) on fast schedules
package logx

// Package logging provides leveled, printf-style logging for the pipeline
// server and tools.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information, including failed transforms
//   - INFO: General operational messages such as startup and batch summaries
//   - WARN: Warning conditions such as ignored configuration values
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The level is read once from the DEBUG or LOG_LEVEL environment variables
// and can be changed later with SetLevel, e.g. from a command line flag.
package logging

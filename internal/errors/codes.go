package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig    ErrorCode = "invalid_configuration"
	ErrBindFlags        ErrorCode = "bind_flags_failed"
	ErrReadConfig       ErrorCode = "read_config_failed"
	ErrInvalidInterval  ErrorCode = "invalid_interval"
	ErrInvalidComponent ErrorCode = "invalid_component"
	ErrInvalidFormat    ErrorCode = "invalid_format"
	ErrWatchConfig      ErrorCode = "watch_config_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Acquisition errors
	ErrProviderUnavailable ErrorCode = "provider_unavailable"
	ErrScanUnavailable     ErrorCode = "scan_unavailable"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"

	// History errors
	ErrInitHistory   ErrorCode = "init_history_failed"
	ErrRecordHistory ErrorCode = "record_history_failed"
	ErrQueryHistory  ErrorCode = "query_history_failed"
	ErrCloseHistory  ErrorCode = "close_history_failed"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:            "Internal error occurred",
	ErrInvalidArgument:     "Invalid argument provided",
	ErrUnavailable:         "Service unavailable",
	ErrInvalidConfig:       "Invalid configuration",
	ErrBindFlags:           "Failed to bind flags",
	ErrReadConfig:          "Failed to read config file",
	ErrInvalidInterval:     "Invalid interval value",
	ErrInvalidComponent:    "Unknown component",
	ErrInvalidFormat:       "Unknown output format",
	ErrWatchConfig:         "Failed to watch config file",
	ErrInvalidLogLevel:     "Invalid log level",
	ErrInitFailed:          "Initialization failed",
	ErrShutdownFailed:      "Shutdown failed",
	ErrAlreadyRunning:      "Another instance is already running",
	ErrProviderUnavailable: "Telemetry unavailable",
	ErrScanUnavailable:     "No telemetry domain could be read",
	ErrOperationFailed:     "Operation failed",
	ErrTimeout:             "Operation timed out",
	ErrInitHistory:         "Failed to initialize scan history",
	ErrRecordHistory:       "Failed to record scan",
	ErrQueryHistory:        "Failed to query scan history",
	ErrCloseHistory:        "Failed to close scan history",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

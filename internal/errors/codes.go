package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidTimezone ErrorCode = "invalid_timezone"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Persistence errors
	ErrPersistenceCorruption ErrorCode = "persistence_corruption"
	ErrPersistenceWrite      ErrorCode = "persistence_write_failed"

	// Sample errors
	ErrInvalidSample ErrorCode = "invalid_sample"

	// Application errors
	ErrMainLoop      ErrorCode = "main_loop_failed"
	ErrStatusCheck   ErrorCode = "status_check_failed"
	ErrPublishFailed ErrorCode = "publish_failed"
	ErrArchiveFailed ErrorCode = "archive_failed"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:              "Internal error occurred",
	ErrInvalidArgument:       "Invalid argument provided",
	ErrAlreadyRunning:        "Another instance is already running",
	ErrInvalidConfig:         "Invalid configuration",
	ErrMissingConfig:         "Missing configuration",
	ErrBindFlags:             "Failed to bind flags",
	ErrReadConfig:            "Failed to read config file",
	ErrInvalidInterval:       "Invalid interval value",
	ErrInvalidTimezone:       "Invalid time zone",
	ErrInvalidLogLevel:       "Invalid log level",
	ErrInitFailed:            "Initialization failed",
	ErrShutdownFailed:        "Shutdown failed",
	ErrPersistenceCorruption: "Persisted stats are unreadable",
	ErrPersistenceWrite:      "Failed to persist stats",
	ErrInvalidSample:         "Invalid status sample",
	ErrMainLoop:              "Error in main loop",
	ErrStatusCheck:           "Failed to check server status",
	ErrPublishFailed:         "Failed to publish report",
	ErrArchiveFailed:         "Failed to archive daily stats",
	ErrTimeout:               "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

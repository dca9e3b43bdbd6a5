package logging

// Field names for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldRunID      = "run_id"
	FieldWorker     = "worker"
	FieldConfig     = "config"

	// Detection fields.
	FieldCharset    = "charset"
	FieldConfidence = "confidence"
	FieldMethod     = "method"
	FieldMaxBytes   = "max_bytes"
	FieldCacheHit   = "cache_hit"
	FieldCachePath  = "cache_path"

	// Conversion fields.
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldBackup   = "backup"
	FieldDryRun   = "dry_run"
	FieldJobs     = "jobs"
	FieldBytesIn  = "bytes_in"
	FieldBytesOut = "bytes_out"

	// Statistics fields.
	FieldFilesListed    = "files_listed"
	FieldFilesDetected  = "files_detected"
	FieldFilesErrored   = "files_errored"
	FieldFilesConverted = "files_converted"
	FieldDuration       = "duration"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

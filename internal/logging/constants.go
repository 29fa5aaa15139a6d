package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the decoder, the portal
// workflow and the accounting repository.
const (
	FieldFile        = "file_path"
	FieldFolder      = "folder"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldRUC         = "ruc"
	FieldAccessKey   = "access_key"
	FieldInvoice     = "invoice_number"
	FieldTransaction = "transaction_number"
	FieldStage       = "stage"
	FieldAttempt     = "attempt"
	FieldURL         = "url"
	FieldRunID       = "run_id"
	FieldDate        = "date"
	FieldOutputFile  = "output_file"
)

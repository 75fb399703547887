package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldFile      = "file"
	FieldFolder    = "folder"
	FieldSource    = "source"
	FieldEntity    = "entity"
	FieldPeriod    = "period"
	FieldCurrency  = "currency"
	FieldStrategy  = "strategy"
	FieldEntries   = "entries"
	FieldWarnings  = "warnings"
	FieldSkipped   = "skipped"
	FieldReason    = "reason"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentScan     = "scan"
	ComponentParse    = "parse"
	ComponentVerify   = "verify"
	ComponentFold     = "fold"
	ComponentReport   = "report"
	ComponentPipeline = "pipeline"
)

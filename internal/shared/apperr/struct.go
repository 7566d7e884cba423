package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // safe to show to the caller
	Fields    map[string]string // per-field validation errors (optional)
	Details   map[string]any    // extra response attributes (optional)
	Err       error             // internal cause, logged only
}

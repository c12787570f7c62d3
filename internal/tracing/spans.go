package tracing

// Span attribute keys for lifecycle tracing.
const (
	AttrWidgetPath = "widget.path"
	AttrNodeHandle = "widget.handle"
	AttrTraversal  = "lifecycle.traversal"
	AttrManaged    = "lifecycle.managed_nodes"
	AttrErrorCount = "lifecycle.error_count"
	AttrErrorKind  = "error.kind"
)

// Span names.
const (
	SpanInit   = "lifecycle.init"
	SpanAttach = "lifecycle.attach"
)

// Event names for span events.
const (
	EventConflict    = "init.conflict"
	EventResolved    = "widget.resolved"
	EventConstructed = "widget.constructed"
	EventInterrupted = "widget.interrupted"
	EventSkipped     = "widget.skipped"
)

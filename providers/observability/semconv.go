package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- Pipeline Node Attributes ---

const (
	// AttrNodeName is the name of the pipeline node a span/log entry concerns
	AttrNodeName = "node.name"

	// AttrNodeRole is the node's role (source, filter, sink)
	AttrNodeRole = "node.role"

	// AttrNodePlugin is the plugin ID bound to the node
	AttrNodePlugin = "node.plugin"
)

// --- Event Attributes ---

const (
	// AttrEventName is the name carried by an event crossing an edge
	AttrEventName = "event.name"

	// AttrEventTimestamp is the event's timestamp
	AttrEventTimestamp = "event.timestamp"
)

// --- Sink Policy Attributes ---

const (
	// AttrThrottleInterval is the configured minimum gap between sink runs
	AttrThrottleInterval = "sink.throttle.interval"

	// AttrBatchWindow is the configured flush window for a batching sink
	AttrBatchWindow = "sink.batch.window"

	// AttrBatchSize is the number of events flushed together
	AttrBatchSize = "sink.batch.size"
)

// --- Scheduler Attributes ---

const (
	// AttrSourceSchedule is the cron expression driving a scheduled source
	AttrSourceSchedule = "source.schedule"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the optional description accompanying a status
	AttrStatusDescription = "status.description"
)

// --- Span Names ---

const (
	// SpanSourceRun is the span name for a source's run
	SpanSourceRun = "node.source.run"

	// SpanFilterRun is the span name for a filter's run
	SpanFilterRun = "node.filter.run"

	// SpanSinkRun is the span name for a sink's run
	SpanSinkRun = "node.sink.run"

	// SpanBatchFlush is the span name for a batching sink's flush
	SpanBatchFlush = "node.sink.batch_flush"
)

// --- Event Names ---

const (
	// EventSourceFired marks a scheduled source being launched
	EventSourceFired = "source.fired"

	// EventSinkThrottled marks a sink invocation dropped by the throttle gate
	EventSinkThrottled = "sink.throttled"

	// EventBatchFlushed marks a batching sink flushing its buffer
	EventBatchFlushed = "sink.batch_flushed"
)

package observability

// Metric name prefixes
const (
	MetricPrefix = "careops"
)

// Metric names
const (
	// Automation metrics
	AutomationRunsTotal   = MetricPrefix + ".automation.runs_total"
	AutomationRunDuration = MetricPrefix + ".automation.run_duration"

	// Billing metrics
	DrawdownsTotal     = MetricPrefix + ".billing.drawdowns_total"
	DrawdownCentsTotal = MetricPrefix + ".billing.drawdown_cents_total"

	// Notification metrics
	NotificationsDeliveredTotal = MetricPrefix + ".notifications.delivered_total"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	// Common labels
	LabelType      = "type"
	LabelStatus    = "status"
	LabelEventType = "event_type"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"

	// HTTP labels
	LabelRoute = "route"
)

// Notification delivery statuses
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

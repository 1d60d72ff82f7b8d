package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor, set on the gin context by pkg/middleware
	FieldUserID = "user_id"
	FieldEmail  = "email"

	// Domain
	FieldPostID       = "post_id"
	FieldCommentID    = "comment_id"
	FieldTargetUserID = "target_user_id"
	FieldObjectKey    = "object_key"

	// Messaging
	FieldTopic     = "topic"
	FieldPartition = "partition"
	FieldOffset    = "offset"

	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)

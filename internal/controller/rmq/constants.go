package rmq

import "time"

const (
	traceName = "rmq"

	queueSize    = 256
	drainTimeout = 5 * time.Second

	exchangeKind       = "topic"
	exchangeDurable    = true
	exchangeAutoDelete = false
	exchangeInternal   = false
	exchangeNoWait     = false

	publishMandatory = false
	publishImmediate = false

	contentTypeJSON = "application/json"

	routingKeyCompleted = "conversion.completed"
	routingKeyFailed    = "conversion.failed"
)

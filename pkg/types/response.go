package types

// WebhookAckData is the acknowledgment payload echoed to webhook senders.
type WebhookAckData struct {
	Email         string  `json:"email"`
	EventType     string  `json:"eventType"`
	ClientIP      string  `json:"clientIP"`
	TransactionID *string `json:"transactionId,omitempty"`
}

// WebhookSuccess is the success-with-flag envelope the funnel frontend expects.
type WebhookSuccess struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WebhookFailure reports a handled failure. Webhook endpoints answer it with
// HTTP 200 so upstream senders do not retry storms on application errors.
type WebhookFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuccessEnvelope wraps non-webhook success responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps non-webhook error responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

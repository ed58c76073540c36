package enums

// EventType names the funnel event a webhook carries.
type EventType string

const (
	EventTypeInitiateCheckout EventType = "InitiateCheckout"
	EventTypePurchase         EventType = "Purchase"
)

func (e EventType) String() string {
	return string(e)
}

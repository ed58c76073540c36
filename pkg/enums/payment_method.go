package enums

// PaymentMethod identifies the provider that confirmed a purchase.
type PaymentMethod string

const PaymentMethodHotmart PaymentMethod = "hotmart"

func (p PaymentMethod) String() string {
	return string(p)
}

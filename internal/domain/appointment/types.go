package appointment

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
	StatusNoShow    Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected, StatusNoShow:
		return true
	default:
		return false
	}
}

// Terminal statuses no longer occupy a slot; they are kept for history.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected, StatusNoShow:
		return true
	default:
		return false
	}
}

// Actor is who is requesting a status transition, resolved by the caller
// from the authenticated user and the appointment's shop ownership.
type Actor string

const (
	ActorCustomer  Actor = "customer"
	ActorShopOwner Actor = "shop_owner"
)

type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentWallet  PaymentMethod = "wallet"
	PaymentOffline PaymentMethod = "offline"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentOnline, PaymentWallet, PaymentOffline:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

package logic

// Rejection says why a caller was not admitted. NotRejected means admitted.
type Rejection int

const (
	NotRejected Rejection = iota
	InsufficientStock
	DuplicateAdmission
	NotActive
)

func (r Rejection) String() string {
	switch r {
	case NotRejected:
		return "admitted"
	case InsufficientStock:
		return "insufficient_stock"
	case DuplicateAdmission:
		return "duplicate_admission"
	case NotActive:
		return "not_active"
	default:
		return "unknown"
	}
}

// Admission is either an order id or a rejection reason, never both.
type Admission struct {
	orderId int64
	reason  Rejection
}

func admitted(orderId int64) Admission {
	return Admission{orderId: orderId}
}

func rejected(reason Rejection) Admission {
	return Admission{reason: reason}
}

// OrderId returns the order id and true when admitted.
func (a Admission) OrderId() (int64, bool) {
	return a.orderId, a.reason == NotRejected
}

func (a Admission) Reason() Rejection {
	return a.reason
}

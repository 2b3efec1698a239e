package domain

// Status is the lifecycle state of an order. It only moves forward
// along the progression below, or jumps to cancelled from any
// non-terminal state.
type Status string

const (
	StatusNew       Status = "new"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCancelled Status = "cancelled"
)

// nextStatus encodes the forward edge of the lifecycle graph.
var nextStatus = map[Status]Status{
	StatusNew:       StatusAccepted,
	StatusAccepted:  StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusPreparing, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// CanTransitionTo allows only the single next forward status, or
// cancellation from any non-terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if s.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return nextStatus[s] == target
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

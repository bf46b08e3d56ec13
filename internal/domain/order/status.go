package order

import "errors"

var ErrInvalidTransition = errors.New("invalid order status transition")

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPlaced    Status = "Placed"
	StatusPaid      Status = "Paid"
	StatusDelivered Status = "Delivered"
	StatusCanceled  Status = "Canceled"
	StatusRefunded  Status = "Refunded"
)

// Pending and Placed are entry states selected at creation by payment method.
// Delivered, Canceled and Refunded are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCanceled},
	StatusPlaced:    {StatusDelivered, StatusCanceled},
	StatusPaid:      {StatusRefunded},
	StatusDelivered: {},
	StatusCanceled:  {},
	StatusRefunded:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

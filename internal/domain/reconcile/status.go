package reconcile

// Status is the lifecycle status of a purchase order. It is always derivable
// from line quantities alone; stored values are a cache, never the truth.
type Status string

const (
	StatusPending           Status = "pending"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusPartiallyReturned Status = "partially_returned"
	StatusReturned          Status = "returned"

	// StatusCancelled is set by an explicit cancel operation,
	// never by derivation.
	StatusCancelled Status = "cancelled"
)

// DeriveStatus computes order status from line quantities.
//
// Returns can unwind an order: when everything received was returned before
// the full ordered quantity arrived, the order drops back to pending and the
// return is visible only in the timeline. Downstream consumers rely on this
// reset, so it is kept even though it hides return history from the status.
func DeriveStatus(items []Item) Status {
	t := SumItems(items)

	if t.Returned <= 0 {
		switch {
		case t.Received <= 0:
			return StatusPending
		case t.Received < t.Ordered:
			return StatusPartiallyReceived
		default:
			return StatusReceived
		}
	}

	if t.NetReceived <= 0 {
		if t.Received > 0 && t.Received >= t.Ordered {
			return StatusReturned
		}
		return StatusPending
	}

	if t.Received >= t.Ordered {
		return StatusPartiallyReturned
	}
	return StatusPartiallyReceived
}

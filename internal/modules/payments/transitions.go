package payments

// automatic lists the transitions the lifecycle may perform on its own.
// completed, cancelled, expired, failed and refunded are final here; only an
// administrative update leaves them.
var automatic = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusExpired, StatusCancelled, StatusCompleted},
	StatusProcessing: {StatusApproved, StatusCancelled, StatusCompleted, StatusFailed},
	StatusApproved:   {StatusCompleted, StatusFailed},
}

func canTransition(from, to Status) bool {
	for _, s := range automatic[from] {
		if s == to {
			return true
		}
	}
	return false
}

// advance moves a payment to `to` when the state machine allows it. Already
// being in `to` is a no-op; any other origin is a TransitionError.
func advance(to Status, note string) MutateFunc {
	return func(p *Payment) (Mutation, error) {
		if p.Status == to {
			return Mutation{}, ErrNoChange
		}
		if !canTransition(p.Status, to) {
			return Mutation{}, &TransitionError{From: p.Status, To: to}
		}
		return Mutation{Status: to, Note: note}, nil
	}
}

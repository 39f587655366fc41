package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Fake is an in-memory Gateway used by tests and local development without
// Asaas credentials. Err fields inject failures per operation.
type Fake struct {
	mu sync.Mutex

	CreateCustomerErr     error
	CreateSubscriptionErr error
	GetSubscriptionErr    error
	CancelSubscriptionErr error

	// StatusOverride replaces the status echoed by CreateSubscription.
	StatusOverride string

	seq           int
	customers     map[string]CustomerInput
	subscriptions map[string]*Subscription
	calls         []string
}

func NewFake() *Fake {
	return &Fake{
		customers:     map[string]CustomerInput{},
		subscriptions: map[string]*Subscription{},
	}
}

func (f *Fake) record(op string) {
	f.calls = append(f.calls, op)
}

func (f *Fake) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpCreateCustomer)
	if err := ctx.Err(); err != nil {
		return nil, newTransportError(OpCreateCustomer, err)
	}
	if f.CreateCustomerErr != nil {
		return nil, f.CreateCustomerErr
	}
	f.seq++
	id := fmt.Sprintf("cus_%06d", f.seq)
	f.customers[id] = in
	return &Customer{ID: id, Name: in.Name, Email: in.Email, CpfCnpj: in.CpfCnpj}, nil
}

func (f *Fake) CreateSubscription(ctx context.Context, in SubscriptionInput) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpCreateSubscription)
	if err := ctx.Err(); err != nil {
		return nil, newTransportError(OpCreateSubscription, err)
	}
	if f.CreateSubscriptionErr != nil {
		return nil, f.CreateSubscriptionErr
	}
	if _, ok := f.customers[in.Customer]; !ok {
		return nil, &RequestError{Op: OpCreateSubscription, StatusCode: http.StatusBadRequest, Message: "Cliente inexistente"}
	}
	status := StatusActive
	if f.StatusOverride != "" {
		status = f.StatusOverride
	}
	f.seq++
	sub := &Subscription{
		ID:          fmt.Sprintf("sub_%06d", f.seq),
		Customer:    in.Customer,
		Status:      status,
		Value:       float64(in.Value),
		NextDueDate: in.NextDueDate,
		Cycle:       in.Cycle,
		BillingType: in.BillingType,
	}
	f.subscriptions[sub.ID] = sub
	out := *sub
	return &out, nil
}

func (f *Fake) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpGetSubscription)
	if err := ctx.Err(); err != nil {
		return nil, newTransportError(OpGetSubscription, err)
	}
	if f.GetSubscriptionErr != nil {
		return nil, f.GetSubscriptionErr
	}
	sub, ok := f.subscriptions[id]
	if !ok {
		return nil, &RequestError{Op: OpGetSubscription, StatusCode: http.StatusNotFound, Message: DefaultMessage(OpGetSubscription)}
	}
	out := *sub
	return &out, nil
}

func (f *Fake) CancelSubscription(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpCancelSubscription)
	if err := ctx.Err(); err != nil {
		return newTransportError(OpCancelSubscription, err)
	}
	if f.CancelSubscriptionErr != nil {
		return f.CancelSubscriptionErr
	}
	sub, ok := f.subscriptions[id]
	if !ok || sub.Deleted {
		return &RequestError{Op: OpCancelSubscription, StatusCode: http.StatusNotFound, Message: DefaultMessage(OpCancelSubscription)}
	}
	sub.Deleted = true
	sub.Status = StatusInactive
	return nil
}

// Put seeds or replaces a remote subscription.
func (f *Fake) Put(sub Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := sub
	f.subscriptions[sub.ID] = &s
}

// Calls returns the operations invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts invocations of op.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

var _ Gateway = (*Fake)(nil)

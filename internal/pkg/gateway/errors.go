package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout matches transport failures caused by a deadline.
var ErrTimeout = errors.New("gateway: timeout")

// RequestError is a non-2xx answer. Message is the gateway's own description
// when it sent one.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("gateway %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsNotFound reports a 404 answer.
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == 404
}

// TransportError means no usable answer was received.
type TransportError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("gateway %s: timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

func newTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err, Timeout: isTimeout(err)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// defaultMessages are used when the gateway rejects without a description.
var defaultMessages = map[string]string{
	OpCreateCustomer:     "Erro ao criar cliente no Asaas",
	OpCreateSubscription: "Erro ao criar assinatura no Asaas",
	OpGetSubscription:    "Erro ao obter assinatura no Asaas",
	OpCancelSubscription: "Erro ao cancelar assinatura no Asaas",
}

// DefaultMessage returns the generic failure text of an operation.
func DefaultMessage(op string) string {
	if msg, ok := defaultMessages[op]; ok {
		return msg
	}
	return "Erro ao comunicar com o Asaas"
}

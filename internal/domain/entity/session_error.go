package entity

import "errors"

// Error taxonomy of the synchronization layer. Callers match with errors.Is;
// infrastructure wraps these with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrProviderUnavailable means no compatible wallet provider was detected.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	// ErrUserRejected means the user declined the access request in their wallet.
	ErrUserRejected = errors.New("user rejected the connection request")
	// ErrProviderError covers other failures surfaced by the wallet provider.
	ErrProviderError = errors.New("wallet provider error")

	// ErrTransportError covers failures of the realtime transport itself.
	ErrTransportError = errors.New("realtime transport error")
	// ErrReconnectExhausted is reported when the reconnect attempt cap is hit.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
	// ErrMalformedMessage marks a frame that failed to parse; it is logged and
	// dropped, never propagated as a fatal channel error.
	ErrMalformedMessage = errors.New("malformed channel message")

	// ErrInvalidInput is returned by risk computations on negative or NaN input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateUnavailable means no conversion path exists for a currency pair.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

package port

import (
	"context"

	"risk_monitor/internal/domain/entity"
)

// AccountProvider defines the boundary to the external wallet provider.
// Implementations must return checksummed addresses and silently drop any
// account string that is not a valid address.
type AccountProvider interface {
	// Accounts queries already-authorized accounts without prompting the user.
	// An empty slice means the provider currently grants no access.
	Accounts(ctx context.Context) ([]string, error)

	// RequestAccounts asks the provider for access, prompting the user if
	// needed. Fails with entity.ErrUserRejected when the user declines and
	// entity.ErrProviderUnavailable when no provider can be reached.
	RequestAccounts(ctx context.Context) ([]string, error)
}

// WalletSession defines the interface consumed by the API layer to inspect
// and drive the wallet session.
type WalletSession interface {
	Connect(ctx context.Context) error
	Disconnect()
	CheckExistingSession(ctx context.Context) error
	Identity() entity.WalletIdentity
	State() (entity.SessionState, string)
}

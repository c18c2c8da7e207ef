package walletrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// JSON-RPC error code used by wallet providers when the user declines an
// access request (EIP-1193 userRejectedRequest).
const codeUserRejected = 4001

// Provider implements port.AccountProvider over a JSON-RPC connection to the
// wallet provider. A rate limiter caps how often the session poll can hit the
// provider even if the poll interval is misconfigured.
type Provider struct {
	client  *rpc.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// NewProvider dials the wallet provider endpoint. A failed dial is reported
// as entity.ErrProviderUnavailable: no compatible provider was detected.
func NewProvider(ctx context.Context, cfg configloader.WalletConfig, logger *zap.Logger) (*Provider, error) {
	client, err := rpc.DialContext(ctx, cfg.ProviderRPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", entity.ErrProviderUnavailable, cfg.ProviderRPCURL, err)
	}
	return &Provider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.PollRateLimitPerSec), cfg.PollBurst),
		timeout: time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		logger:  logger.Named("WalletProvider"),
	}, nil
}

// Accounts queries already-authorized accounts without prompting the user.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	return p.call(ctx, "eth_accounts")
}

// RequestAccounts asks the provider for access, prompting the user if needed.
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	return p.call(ctx, "eth_requestAccounts")
}

func (p *Provider) call(ctx context.Context, method string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", entity.ErrProviderError, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var raw []string
	if err := p.client.CallContext(callCtx, &raw, method); err != nil {
		return nil, p.mapError(method, err)
	}
	return p.normalize(raw), nil
}

// mapError translates provider failures into the session error taxonomy.
func (p *Provider) mapError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return fmt.Errorf("%w: %s: %v", entity.ErrUserRejected, method, err)
	}
	return fmt.Errorf("%w: %s: %v", entity.ErrProviderError, method, err)
}

// normalize checksums every account string and drops anything that is not a
// valid address, so invalid values never reach the session state.
func (p *Provider) normalize(raw []string) []string {
	accounts := make([]string, 0, len(raw))
	for _, s := range raw {
		if !common.IsHexAddress(s) {
			p.logger.Warn("Dropping invalid account string from provider", zap.String("value", s))
			continue
		}
		accounts = append(accounts, common.HexToAddress(s).Hex())
	}
	return accounts
}

// Close releases the underlying RPC connection.
func (p *Provider) Close() {
	p.client.Close()
}

var _ port.AccountProvider = (*Provider)(nil)

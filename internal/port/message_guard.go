package port

import "context"

type MessageGuard interface {
	// Claim marks a delivery as seen, returns false if it was already claimed
	Claim(ctx context.Context, key string) (bool, error)
}

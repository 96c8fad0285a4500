package usedtokens

import "context"

type Repository interface {
	Exists(ctx context.Context, token string) (bool, error)
	Create(ctx context.Context, token string, userEmail string) error
}

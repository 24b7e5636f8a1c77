package interfaces

import (
	"context"

	"github.com/jonafarm/market/types"
)

type AccountService interface {
	ListFarmers(ctx context.Context) ([]types.Account, error)
	// LoginStaff checks farmer, admin or distributor credentials.
	LoginStaff(ctx context.Context, role, username, password string) (types.Account, error)
	Signup(ctx context.Context, in types.SignupInput) (types.User, error)
	LoginUser(ctx context.Context, email, password string) (types.User, error)
}

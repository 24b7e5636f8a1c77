package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/store"
	"github.com/jonafarm/market/types"
)

// Staff roles that log in with a username
const (
	RoleFarmer      = "farmer"
	RoleAdmin       = "admin"
	RoleDistributor = "distributor"
)

type AccountServiceImpl struct {
	farmers      *store.JSONFile[types.Account]
	admins       *store.JSONFile[types.Account]
	distributors *store.JSONFile[types.Account]
	users        *store.JSONFile[types.User]
}

func NewAccountService(farmers, admins, distributors *store.JSONFile[types.Account], users *store.JSONFile[types.User]) *AccountServiceImpl {
	return &AccountServiceImpl{
		farmers:      farmers,
		admins:       admins,
		distributors: distributors,
		users:        users,
	}
}

// ListFarmers returns all farmers without their passwords.
func (s *AccountServiceImpl) ListFarmers(ctx context.Context) ([]types.Account, error) {
	farmers, err := s.farmers.All()
	if err != nil {
		return nil, err
	}
	out := make([]types.Account, 0, len(farmers))
	for _, f := range farmers {
		out = append(out, f.Public())
	}
	return out, nil
}

func (s *AccountServiceImpl) LoginStaff(ctx context.Context, role, username, password string) (types.Account, error) {
	repo, err := s.staffRepo(role)
	if err != nil {
		return types.Account{}, err
	}
	accounts, err := repo.All()
	if err != nil {
		return types.Account{}, err
	}
	for _, a := range accounts {
		if a.Username == username && a.Password == password {
			logx.Info("ACCOUNTS", fmt.Sprintf("Login | role=%s | username=%s", role, username))
			return a.Public(), nil
		}
	}
	return types.Account{}, ErrInvalidCredentials
}

func (s *AccountServiceImpl) Signup(ctx context.Context, in types.SignupInput) (types.User, error) {
	var created types.User
	err := s.users.Update(func(users []types.User) ([]types.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, in.Email) {
				return nil, ErrEmailRegistered
			}
		}
		created = types.User{
			Name:     in.Name,
			Phone:    in.Phone,
			Email:    in.Email,
			Password: in.Password,
			Role:     types.UserRoleBuyer,
			Status:   types.UserStatusActive,
		}
		return append(users, created), nil
	})
	if err != nil {
		return types.User{}, err
	}
	logx.Info("ACCOUNTS", "New user registered | email=", in.Email)
	return created.Public(), nil
}

func (s *AccountServiceImpl) LoginUser(ctx context.Context, email, password string) (types.User, error) {
	users, err := s.users.All()
	if err != nil {
		return types.User{}, err
	}
	for _, u := range users {
		if u.Email == email && u.Password == password {
			return u.Public(), nil
		}
	}
	return types.User{}, ErrInvalidCredentials
}

func (s *AccountServiceImpl) staffRepo(role string) (*store.JSONFile[types.Account], error) {
	switch role {
	case RoleFarmer:
		return s.farmers, nil
	case RoleAdmin:
		return s.admins, nil
	case RoleDistributor:
		return s.distributors, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
}

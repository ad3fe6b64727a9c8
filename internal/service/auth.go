package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"social_quests_api/internal/model"
	"social_quests_api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ETH-style address: 0x followed by 40 hex characters, lowercase after
// normalization.
var walletAddressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

type AuthService struct {
	repo UserRepository
}

func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// AuthenticateByWallet resolves a wallet address to a user, registering one
// with zero XP on first contact. The address is lowercased before lookup so
// mixed-case input resolves to the same identity.
func (s *AuthService) AuthenticateByWallet(ctx context.Context, address string) (*model.User, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !walletAddressPattern.MatchString(address) {
		return nil, ErrInvalidWalletAddress
	}

	user, err := s.repo.GetUserByWallet(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}

	user, err = s.repo.CreateWalletUser(ctx, address)
	if err != nil {
		// Another first-contact request for the same address won the insert.
		if errors.Is(err, repository.ErrDuplicateUser) {
			return s.repo.GetUserByWallet(ctx, address)
		}
		return nil, fmt.Errorf("failed to create wallet user: %w", err)
	}

	return user, nil
}

package service

import (
	"context"
	"testing"

	"social_quests_api/internal/model"
	"social_quests_api/internal/repository"
	"social_quests_api/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_AuthenticateByWallet(t *testing.T) {
	existing := &model.User{ID: 1, WalletAddress: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", XPTotal: 120}

	tests := []struct {
		name          string
		address       string
		mockSetup     func(mockRepo *mocks.MockUserRepository)
		expectedUser  *model.User
		expectedError error
	}{
		{
			name:    "Existing user, already lowercase",
			address: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd").
					Return(existing, nil)
			},
			expectedUser: existing,
		},
		{
			name:    "Mixed case input resolves to the same identity",
			address: "0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd").
					Return(existing, nil)
			},
			expectedUser: existing,
		},
		{
			name:    "First contact creates a zero-XP user",
			address: "0x1111111111111111111111111111111111111111",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, "0x1111111111111111111111111111111111111111").
					Return(nil, repository.ErrNotFound)
				mockRepo.On("CreateWalletUser", mock.Anything, "0x1111111111111111111111111111111111111111").
					Return(&model.User{ID: 2, WalletAddress: "0x1111111111111111111111111111111111111111", XPTotal: 0}, nil)
			},
			expectedUser: &model.User{ID: 2, WalletAddress: "0x1111111111111111111111111111111111111111", XPTotal: 0},
		},
		{
			name:    "Lost first-contact race falls back to lookup",
			address: "0x2222222222222222222222222222222222222222",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				winner := &model.User{ID: 3, WalletAddress: "0x2222222222222222222222222222222222222222"}
				mockRepo.On("GetUserByWallet", mock.Anything, "0x2222222222222222222222222222222222222222").
					Return(nil, repository.ErrNotFound).Once()
				mockRepo.On("CreateWalletUser", mock.Anything, "0x2222222222222222222222222222222222222222").
					Return(nil, repository.ErrDuplicateUser)
				mockRepo.On("GetUserByWallet", mock.Anything, "0x2222222222222222222222222222222222222222").
					Return(winner, nil).Once()
			},
			expectedUser: &model.User{ID: 3, WalletAddress: "0x2222222222222222222222222222222222222222"},
		},
		{
			name:          "Missing 0x prefix",
			address:       "abcdefabcdefabcdefabcdefabcdefabcdefabcdab",
			mockSetup:     func(mockRepo *mocks.MockUserRepository) {},
			expectedError: ErrInvalidWalletAddress,
		},
		{
			name:          "Too short",
			address:       "0xabcdef",
			mockSetup:     func(mockRepo *mocks.MockUserRepository) {},
			expectedError: ErrInvalidWalletAddress,
		},
		{
			name:          "Non-hex characters",
			address:       "0xzzzdefabcdefabcdefabcdefabcdefabcdefabcd",
			mockSetup:     func(mockRepo *mocks.MockUserRepository) {},
			expectedError: ErrInvalidWalletAddress,
		},
		{
			name:          "Empty address",
			address:       "",
			mockSetup:     func(mockRepo *mocks.MockUserRepository) {},
			expectedError: ErrInvalidWalletAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockUserRepository{}
			service := NewAuthService(mockRepo)

			tt.mockSetup(mockRepo)

			user, err := service.AuthenticateByWallet(context.Background(), tt.address)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("Stores a hash, never the raw password", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewAuthService(mockRepo)

		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(user *model.User) bool {
			if user.Username != "alice" || user.Email != "alice@example.com" {
				return false
			}
			if user.PasswordHash == "hunter2secret" || user.PasswordHash == "" {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2secret")) == nil
		})).Return(nil)

		user, err := service.Register(context.Background(), "alice", "alice@example.com", "hunter2secret")
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate username or email", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewAuthService(mockRepo)

		mockRepo.On("CreateUser", mock.Anything, mock.Anything).
			Return(repository.ErrDuplicateUser)

		user, err := service.Register(context.Background(), "alice", "alice@example.com", "hunter2secret")
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		assert.Nil(t, user)

		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	stored := &model.User{ID: 5, Username: "bob", PasswordHash: string(hash)}

	tests := []struct {
		name          string
		username      string
		password      string
		mockSetup     func(mockRepo *mocks.MockUserRepository)
		expectedError error
	}{
		{
			name:     "Correct password",
			username: "bob",
			password: "correct-horse",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByUsername", mock.Anything, "bob").Return(stored, nil)
			},
		},
		{
			name:     "Wrong password",
			username: "bob",
			password: "battery-staple",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByUsername", mock.Anything, "bob").Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Unknown username",
			username: "mallory",
			password: "whatever",
			mockSetup: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("GetUserByUsername", mock.Anything, "mallory").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockUserRepository{}
			service := NewAuthService(mockRepo)

			tt.mockSetup(mockRepo)

			user, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, stored, user)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

package authservice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/bilguunt/moneyapp/internal/domain"
	"github.com/bilguunt/moneyapp/pkg/auth"
	"go.uber.org/zap"
)

// Mongolian mobile numbers are eight digits.
var phonePattern = regexp.MustCompile(`^\d{8}$`)

type UserRepo interface {
	FindByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type WalletService interface {
	CreateWallet(ctx context.Context, userID int) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID int) (*domain.Wallet, error)
}

type Service struct {
	userRepo      UserRepo
	walletService WalletService
	hashService   auth.HashServiceInterface
	jwtService    auth.JWTServiceInterface
}

func New(userRepo UserRepo, walletService WalletService, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:      userRepo,
		walletService: walletService,
		hashService:   hashService,
		jwtService:    jwtService,
	}
}

func (s *Service) Register(ctx context.Context, phoneNumber, fullName, password string) (*domain.User, error) {
	if !phonePattern.MatchString(phoneNumber) {
		return nil, fmt.Errorf("phone number must be 8 digits: %w", domain.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation)
	}

	existingUser, err := s.userRepo.FindByPhone(ctx, phoneNumber)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("phone", phoneNumber))
		return nil, errors.New("phone number already registered")
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}
	user := &domain.User{
		PhoneNumber:  phoneNumber,
		FullName:     fullName,
		PasswordHash: hashedPassword,
	}
	newUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		zap.L().Error("can't create user: ", zap.Error(err))
		return nil, err
	}

	// Every account starts with an unverified zero-balance wallet.
	if _, err = s.walletService.CreateWallet(ctx, newUser.ID); err != nil {
		zap.L().Error("can't create wallet: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("phone", phoneNumber))
	return newUser, nil
}

func (s *Service) Authenticate(ctx context.Context, phoneNumber, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByPhone(ctx, phoneNumber)
	if err != nil || user == nil {
		zap.L().Error("invalid credentials", zap.Error(err))
		return nil, errors.New("invalid credentials")
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Error("invalid credentials", zap.Error(err))
		return nil, errors.New("invalid credentials")
	}
	zap.L().Info("user successfully authenticated", zap.String("phone", phoneNumber))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)

	token, err := s.jwtService.GenerateJWT(userID, expirationTime)
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}

// Me returns the authenticated user's profile together with the wallet, so
// the mobile client can refresh both in one call on launch.
func (s *Service) Me(ctx context.Context, userID int) (*domain.User, *domain.Wallet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	wallet, err := s.walletService.GetWallet(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, wallet, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, currentPassword); !ok {
		return errors.New("invalid credentials")
	}

	hashedPassword, err := s.hashService.HashPassword(newPassword)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return err
	}
	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	zap.L().Info("password changed", zap.Int("userID", userID))
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, fullName string) (*domain.User, error) {
	if fullName == "" || len(fullName) > 100 {
		return nil, fmt.Errorf("full name must be 1-100 characters: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	user.FullName = fullName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

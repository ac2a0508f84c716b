package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"quickbite-backend/internal/models"
	emailSvc "quickbite-backend/pkg/email"
	"quickbite-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// ServiceInterface defines methods for user business logic.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	HandleGoogleLogin() (authURL, state string, err error)
	HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*models.AuthResponse, error)

	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type Service struct {
	userRepo          RepositoryInterface
	emailer           emailSvc.ServiceInterface
	templateManager   *emailSvc.TemplateManager
	jwtSecret         string
	clientOrigin      string
	googleOAuthConfig *oauth2.Config
}

func NewService(
	userRepo RepositoryInterface,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	jwtSecret string,
	clientOrigin string,
	googleOAuthConfig *oauth2.Config,
) ServiceInterface {
	return &Service{
		userRepo:          userRepo,
		emailer:           emailer,
		templateManager:   tm,
		jwtSecret:         jwtSecret,
		clientOrigin:      clientOrigin,
		googleOAuthConfig: googleOAuthConfig,
	}
}

// googleUserInfo unmarshals the Google user info response.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("service.generateAuthResponse: %w", err)
	}

	return &models.AuthResponse{AccessToken: signed, User: user}, nil
}

// Signup registers a new account and immediately returns a session token.
// The welcome email goes out on a goroutine so a slow SES call never blocks
// the signup response.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	newUser := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  role,
	}
	createdUser, err := s.userRepo.Create(ctx, newUser, string(hashedPassword))
	if err != nil {
		// The unique index on email reports duplicates as ErrConflict.
		return nil, fmt.Errorf("service.Signup.Create: %w", err)
	}

	htmlContent, err := s.templateManager.GenerateWelcomeEmailHTML(emailSvc.TemplateData{
		Name: createdUser.Name,
		Link: s.clientOrigin,
	})
	if err != nil {
		log.Printf("Failed to generate welcome email HTML: %v", err)
	} else {
		plainText := fmt.Sprintf("Welcome to QuickBite! Browse restaurants and place your first order at %s", s.clientOrigin)
		go func() {
			if err := s.emailer.SendEmail(context.Background(), createdUser.Email, "Welcome to QuickBite!", plainText, htmlContent); err != nil {
				log.Printf("Failed to send welcome email to %s: %v", createdUser.Email, err)
			}
		}()
	}

	return s.generateAuthResponse(createdUser)
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(user)
}

// HandleGoogleLogin builds the Google consent URL and the state parameter the
// handler stores in a cookie.
func (s *Service) HandleGoogleLogin() (string, string, error) {
	state, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", "", fmt.Errorf("service.HandleGoogleLogin: %w", err)
	}
	return s.googleOAuthConfig.AuthCodeURL(state), state, nil
}

// HandleGoogleCallback exchanges the authorization code, fetches the Google
// profile, and signs the user in, creating the account on first sight.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	token, err := s.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Exchange: %w", err)
	}

	resp, err := s.googleOAuthConfig.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.UserInfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service.HandleGoogleCallback: userinfo returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Read: %w", err)
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Unmarshal: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.userRepo.CreateOAuthUser(ctx, &models.User{
			Name:         info.Name,
			Email:        info.Email,
			Role:         models.RoleCustomer,
			AvatarURL:    info.Picture,
			AuthProvider: "google",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.User: %w", err)
	}

	return s.generateAuthResponse(user)
}

// RequestPasswordReset stores a short-lived token and mails a reset link. An
// unknown email returns success to avoid leaking which addresses exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.RequestPasswordReset.FindByEmail: %w", err)
	}

	resetToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("service.RequestPasswordReset.GenerateToken: %w", err)
	}
	expiresAt := time.Now().Add(15 * time.Minute)

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, resetToken, expiresAt); err != nil {
		return fmt.Errorf("service.RequestPasswordReset.SetToken: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.clientOrigin, resetToken)
	htmlContent, err := s.templateManager.GenerateResetPasswordEmailHTML(emailSvc.TemplateData{
		Name: user.Name,
		Link: resetURL,
	})
	if err != nil {
		return fmt.Errorf("service.RequestPasswordReset.Template: %w", err)
	}

	plainText := fmt.Sprintf("We received a request to reset your QuickBite password. Use this link within 15 minutes: %s", resetURL)
	go func() {
		if err := s.emailer.SendEmail(context.Background(), user.Email, "Reset your QuickBite password", plainText, htmlContent); err != nil {
			log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
		}
	}()

	return nil
}

// ResetPassword completes the reset flow and logs the user straight in.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByPasswordResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.ResetPassword.HashPassword: %w", err)
	}

	if err := s.userRepo.UpdatePasswordAndClearResetToken(ctx, user.ID, string(hashedPassword)); err != nil {
		return nil, fmt.Errorf("service.ResetPassword.Update: %w", err)
	}

	return s.generateAuthResponse(user)
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	return s.userRepo.Update(ctx, userID, data)
}

func (s *Service) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	return s.userRepo.ListAddresses(ctx, userID)
}

func (s *Service) AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error) {
	return s.userRepo.AddAddress(ctx, userID, req)
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error) {
	return s.userRepo.UpdateAddress(ctx, userID, addressID, req)
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return s.userRepo.SetDefaultAddress(ctx, userID, addressID)
}

// DeleteAddress removes an address. The default address is protected while
// other addresses exist: the user must pick a new default first, so order
// placement always has one to fall back on. A sole remaining address can be
// deleted freely.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	addr, err := s.userRepo.FindAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}

	if addr.IsDefault {
		count, err := s.userRepo.CountAddresses(ctx, userID)
		if err != nil {
			return fmt.Errorf("service.DeleteAddress.Count: %w", err)
		}
		if count > 1 {
			return models.ErrDefaultAddressInUse
		}
	}

	return s.userRepo.DeleteAddress(ctx, userID, addressID)
}

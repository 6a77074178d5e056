package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/config"
	"github.com/sistenfrota/auth-service/internal/models"
	"github.com/sistenfrota/auth-service/internal/repositories"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            models.UserRole
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	IP         string
	UserAgent  string
}

// AuthResult is the payload of a successful register or login.
type AuthResult struct {
	User                  *models.User
	Token                 string
	RefreshToken          string
	ExpiresIn             string
	RefreshTokenExpiresIn string
}

type TokenPair struct {
	Token        string
	RefreshToken string
}

// AuthService orchestrates the session lifecycle: register, login with
// throttling and account lockout, password recovery, token refresh and the
// two logout flavors.
type AuthService struct {
	userRepo    repositories.UserRepository
	historyRepo repositories.LoginHistoryRepository
	tokens      *TokenService
	throttle    *LoginThrottle
	revocation  RevocationStore
	mailer      Mailer
	geo         GeoResolver
	log         *zap.Logger

	bcryptCost          int
	maxFailedBeforeLock int
	lockoutDuration     time.Duration
	verificationTTL     time.Duration
	resetTTL            time.Duration

	now func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	historyRepo repositories.LoginHistoryRepository,
	tokens *TokenService,
	throttle *LoginThrottle,
	revocation RevocationStore,
	mailer Mailer,
	geo GeoResolver,
	cfg *config.AuthConfig,
	log *zap.Logger,
) (*AuthService, error) {
	lockout, err := cfg.GetLockoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid lockout_duration: %w", err)
	}
	verificationTTL, err := cfg.GetVerificationTokenExpiry()
	if err != nil {
		return nil, fmt.Errorf("invalid verification_token_expiry: %w", err)
	}
	resetTTL, err := cfg.GetResetTokenExpiry()
	if err != nil {
		return nil, fmt.Errorf("invalid reset_token_expiry: %w", err)
	}

	return &AuthService{
		userRepo:            userRepo,
		historyRepo:         historyRepo,
		tokens:              tokens,
		throttle:            throttle,
		revocation:          revocation,
		mailer:              mailer,
		geo:                 geo,
		log:                 log,
		bcryptCost:          cfg.BcryptCost,
		maxFailedBeforeLock: cfg.MaxFailedBeforeLock,
		lockoutDuration:     lockout,
		verificationTTL:     verificationTTL,
		resetTTL:            resetTTL,
		now:                 time.Now,
	}, nil
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, &ValidationError{Message: "all fields are required"}
	}
	if input.Password != input.ConfirmPassword {
		return nil, &ValidationError{Message: "passwords do not match"}
	}
	if !emailPattern.MatchString(input.Email) {
		return nil, &ValidationError{Message: "invalid email"}
	}
	if violations := ValidatePassword(input.Password); len(violations) > 0 {
		return nil, &ValidationError{
			Message: "password does not meet the minimum security requirements",
			Details: violations,
		}
	}

	exists, err := s.userRepo.ExistsByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}

	verificationToken, err := randomToken()
	if err != nil {
		return nil, err
	}
	verificationExpires := s.now().Add(s.verificationTTL)

	user := &models.User{
		Name:                     input.Name,
		Email:                    input.Email,
		PasswordHash:             hash,
		Role:                     role,
		Active:                   true,
		EmailVerificationToken:   &verificationToken,
		EmailVerificationExpires: &verificationExpires,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// Verification mail is best-effort: registration already succeeded.
	if err := s.mailer.SendVerificationEmail(user, verificationToken); err != nil {
		s.log.Warn("failed to send verification email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}

	return s.buildAuthResult(user, false)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	// The throttle runs before any store lookup so a blocked identifier is
	// rejected even when the account does not exist.
	if err := s.throttle.Check(input.Email); err != nil {
		return nil, err
	}

	if input.Email == "" || input.Password == "" {
		return nil, &ValidationError{Message: "email and password are required"}
	}

	device := ParseUserAgent(input.UserAgent)
	location := s.geo.Lookup(input.IP)
	now := s.now()

	user, err := s.userRepo.GetByEmail(input.Email)
	if err != nil {
		return nil, err
	}

	history := &models.LoginHistory{
		Email:     input.Email,
		IP:        orUnknown(input.IP),
		UserAgent: orUnknown(input.UserAgent),
		Browser:   device.Browser,
		OS:        device.OS,
		Device:    device.Device,
		Location:  location,
		Status:    models.LoginStatusFailed,
	}

	if user == nil {
		s.recordHistory(history, "user not found")
		if err := s.throttle.RecordFailure(input.Email); err != nil {
			s.log.Warn("failed to record login attempt", zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}
	history.UserID = &user.ID

	if user.IsLocked(now) {
		s.recordHistory(history, "account locked")
		return nil, &AccountLockedError{RetryAfter: user.LockUntil.Sub(now)}
	}

	if !user.Active {
		s.recordHistory(history, "inactive account")
		return nil, ErrInactiveAccount
	}

	if !CheckPasswordHash(input.Password, user.PasswordHash) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= s.maxFailedBeforeLock {
			lockUntil := now.Add(s.lockoutDuration)
			user.LockUntil = &lockUntil
		}
		if err := s.userRepo.Update(user); err != nil {
			s.log.Error("failed to persist failed login attempt", zap.Error(err))
		}

		s.recordHistory(history, "invalid password")
		if err := s.throttle.RecordFailure(input.Email); err != nil {
			s.log.Warn("failed to record login attempt", zap.Error(err))
		}

		if user.LockUntil != nil {
			return nil, &AccountLockedError{RetryAfter: s.lockoutDuration}
		}
		return nil, ErrInvalidCredentials
	}

	// Successful login: clear counters and the throttle record.
	user.FailedLoginAttempts = 0
	user.LockUntil = nil
	lastLogin := now
	user.LastLogin = &lastLogin
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := s.throttle.RecordSuccess(input.Email); err != nil {
		s.log.Warn("failed to clear login attempts", zap.Error(err))
	}

	history.Status = models.LoginStatusSuccess
	s.recordHistory(history, "")

	s.notifyNewDevice(user, device, location, now)

	return s.buildAuthResult(user, input.RememberMe)
}

// notifyNewDevice sends a best-effort notification when this browser/OS/device
// signature has never logged in successfully before. The success row for the
// current login is already written, so a count of one means first sighting.
func (s *AuthService) notifyNewDevice(user *models.User, device DeviceInfo, location string, now time.Time) {
	count, err := s.historyRepo.CountSuccess(user.ID, device.Browser, device.OS, device.Device)
	if err != nil {
		s.log.Warn("failed to check device history", zap.Error(err))
		return
	}
	if count > 1 {
		return
	}
	info := NewDeviceInfo{
		Browser:  device.Browser,
		OS:       device.OS,
		Device:   device.Device,
		Location: location,
		Time:     now,
	}
	if err := s.mailer.SendNewDeviceLoginEmail(user, info); err != nil {
		s.log.Warn("failed to send new device email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
}

func (s *AuthService) VerifyEmail(email, token string) error {
	if email == "" || token == "" {
		return &ValidationError{Message: "email and token are required"}
	}

	user, err := s.userRepo.GetByEmailAndVerificationToken(email, token, s.now())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	return s.userRepo.Update(user)
}

// ForgotPassword never reveals whether the email exists. The controller
// returns the same generic message in both branches; only a mail delivery
// failure for an existing user surfaces as an error.
func (s *AuthService) ForgotPassword(email string) error {
	if email == "" {
		return &ValidationError{Message: "email is required"}
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.resetTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordRecoveryEmail(user, token); err != nil {
		s.log.Error("failed to send recovery email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return ErrMailDelivery
	}
	return nil
}

func (s *AuthService) ResetPassword(email, token, password string) error {
	if email == "" || token == "" || password == "" {
		return &ValidationError{Message: "all fields are required"}
	}
	if violations := ValidatePassword(password); len(violations) > 0 {
		return &ValidationError{
			Message: "password does not meet the minimum security requirements",
			Details: violations,
		}
	}

	user, err := s.userRepo.GetByEmailAndResetToken(email, token, s.now())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	// Invalidate every refresh token issued before the reset.
	if err := s.userRepo.IncrementTokenVersion(user.ID); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordChangedEmail(user); err != nil {
		s.log.Warn("failed to send password changed email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
	return nil
}

// Refresh rotates a refresh token into a fresh access+refresh pair. The old
// token is not blacklisted; it dies either at its natural expiry or at the
// next token-version bump.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if claims.Version != user.TokenVersion {
		return nil, ErrStaleToken
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user, false)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: access, RefreshToken: refresh}, nil
}

// Logout blacklists the presented access token for its remaining lifetime and
// bumps the token version so existing refresh tokens die too.
func (s *AuthService) Logout(user *models.User, accessToken string) error {
	expiresAt := s.now().Add(s.tokens.AccessTokenTTL())
	if claims, err := s.tokens.VerifyAccessToken(accessToken); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revocation.Revoke(accessToken, expiresAt); err != nil {
		return err
	}
	return s.userRepo.IncrementTokenVersion(user.ID)
}

// LogoutAll invalidates all refresh tokens via the version bump. Access
// tokens issued earlier stay valid until their natural expiry; keeping the
// access TTL short bounds that window.
func (s *AuthService) LogoutAll(user *models.User) error {
	return s.userRepo.IncrementTokenVersion(user.ID)
}

func (s *AuthService) ListUsers(limit, offset int) ([]models.User, int64, error) {
	return s.userRepo.GetAll(limit, offset)
}

func (s *AuthService) buildAuthResult(user *models.User, rememberMe bool) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user, rememberMe)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:                  user,
		Token:                 access,
		RefreshToken:          refresh,
		ExpiresIn:             formatTTL(s.tokens.AccessTokenTTL()),
		RefreshTokenExpiresIn: formatTTL(s.tokens.RefreshTokenTTL(rememberMe)),
	}, nil
}

func (s *AuthService) recordHistory(entry *models.LoginHistory, failureReason string) {
	if failureReason != "" {
		entry.FailureReason = &failureReason
	} else {
		entry.FailureReason = nil
	}
	if err := s.historyRepo.Create(entry); err != nil {
		s.log.Error("failed to record login history",
			zap.String("email", entry.Email),
			zap.Error(err),
		)
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// formatTTL renders durations the way clients expect them: whole days as
// "7d", anything shorter via the standard notation ("1h", "30m").
func formatTTL(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
	return d.String()
}

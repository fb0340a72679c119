package usecase

import (
	"context"
	"errors"
	"strings"

	"psychiatry-booking/internal/converter"
	"psychiatry-booking/internal/delivery/dto"
	"psychiatry-booking/internal/domain/entity"
	"psychiatry-booking/internal/domain/repository"
	"psychiatry-booking/internal/service"
	"psychiatry-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterPsychiatrist(ctx context.Context, req *dto.RegisterPsychiatristRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Authenticate(ctx context.Context, accessToken string) (*entity.Session, error)
	GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	psychiatristRepo repository.PsychiatristRepository
	patientRepo      repository.PatientRepository
	jwtService       *jwt.JWTService
	tokenStore       service.TokenStore
	directoryCache   service.DirectoryCache
	auditService     service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	psychiatristRepo repository.PsychiatristRepository,
	patientRepo repository.PatientRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	directoryCache service.DirectoryCache,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:               db,
		log:              log,
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		psychiatristRepo: psychiatristRepo,
		patientRepo:      patientRepo,
		jwtService:       jwtService,
		tokenStore:       tokenStore,
		directoryCache:   directoryCache,
		auditService:     auditService,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.createUser(ctx, tx, entity.RolePatient, req.Name, req.Email, string(hashedPassword))
	if err != nil {
		return nil, err
	}

	patient := &entity.Patient{
		ID:    user.ID,
		Name:  user.FullName,
		Email: user.Email,
	}
	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "patient", patient.ID.String(), converter.PatientToResponse(patient)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	response := converter.UserToResponse(user)
	response.Patient = converter.PatientToResponse(patient)
	return response, nil
}

func (u *authUsecase) RegisterPsychiatrist(ctx context.Context, req *dto.RegisterPsychiatristRequest) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.createUser(ctx, tx, entity.RolePsychiatrist, req.Name, req.Email, string(hashedPassword))
	if err != nil {
		return nil, err
	}

	psychiatrist := &entity.Psychiatrist{
		Name:         user.FullName,
		Specialty:    strings.TrimSpace(req.Specialty),
		Location:     strings.TrimSpace(req.Location),
		Bio:          strings.TrimSpace(req.Bio),
		Email:        user.Email,
		Availability: trimmed(req.Availability),
	}
	if err := u.psychiatristRepo.Create(ctx, tx, psychiatrist); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create psychiatrist: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "psychiatrist", psychiatrist.ID.String(), converter.PsychiatristToResponse(psychiatrist)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if err := u.directoryCache.Invalidate(ctx); err != nil {
		u.log.Warnf("Failed to invalidate directory cache: %+v", err)
	}

	response := converter.UserToResponse(user)
	response.Psychiatrist = converter.PsychiatristToResponse(psychiatrist)
	return response, nil
}

func (u *authUsecase) createUser(ctx context.Context, tx *gorm.DB, roleName, name, email, passwordHash string) (*entity.User, error) {
	role, err := u.roleRepo.FindByName(ctx, tx, roleName)
	if err != nil {
		u.log.Warnf("Failed to find role: %+v", err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	user := &entity.User{
		Email:    strings.TrimSpace(email),
		Password: passwordHash,
		FullName: strings.TrimSpace(name),
		RoleID:   role.ID,
		Role:     *role,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.TrimSpace(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email, user.RoleID)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, nil, &user.ID, entity.AuditActionUserLogin, entity.JSON{"email": user.Email}); err != nil {
		u.log.Warnf("Failed to record login: %+v", err)
	}

	return tokens, nil
}

// Logout revokes the session's access token and, when given, the refresh token.
func (u *authUsecase) Logout(ctx context.Context, session *entity.Session, refreshToken string) error {
	if session == nil {
		return ErrUnauthorized
	}

	if err := u.tokenStore.Revoke(ctx, session.UserID, jwt.AccessToken, session.TokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == session.UserID {
			if err := u.tokenStore.Revoke(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID); err != nil {
				u.log.Warnf("Failed to delete refresh token: %+v", err)
				return err
			}
		}
	}

	if err := u.auditService.LogEvent(ctx, nil, &session.UserID, entity.AuditActionUserLogout, entity.JSON{"email": session.Email}); err != nil {
		u.log.Warnf("Failed to record logout: %+v", err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Revoke(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email, claims.RoleID)
}

// Authenticate turns a bearer access token into a session.
func (u *authUsecase) Authenticate(ctx context.Context, accessToken string) (*entity.Session, error) {
	claims, err := u.jwtService.ValidateToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.AccessToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.UserID, jwt.AccessToken, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check access token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	return &entity.Session{
		UserID:  claims.UserID,
		Email:   claims.Email,
		RoleID:  claims.RoleID,
		TokenID: claims.TokenID,
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}

	user, err := u.userRepo.FindByID(ctx, u.db, session.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	response := converter.UserToResponse(user)

	switch user.RoleID {
	case entity.RoleIDPsychiatrist:
		psychiatrist, err := u.psychiatristRepo.FindByEmail(ctx, u.db, user.Email)
		if err != nil {
			u.log.Warnf("Failed to find psychiatrist profile: %+v", err)
			return nil, err
		}
		response.Psychiatrist = converter.PsychiatristToResponse(psychiatrist)
	case entity.RoleIDPatient:
		patient, err := u.patientRepo.FindByID(ctx, u.db, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find patient profile: %+v", err)
			return nil, err
		}
		response.Patient = converter.PatientToResponse(patient)
	}

	return response, nil
}

// EnsureAdmin creates the fixed-credential admin account when it is missing.
func (u *authUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		u.log.Warn("Admin credentials not configured, skipping admin seed")
		return nil
	}

	existing, err := u.userRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find admin user: %+v", err)
		return err
	}
	if existing != nil {
		if existing.RoleID != entity.RoleIDAdmin {
			u.log.Warnf("Admin email %s belongs to a non-admin account", email)
		}
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	if _, err := u.createUser(ctx, u.db, entity.RoleAdmin, "Administrator", email, string(hashedPassword)); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	u.log.Infof("Admin account %s created", email)
	return nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, roleID int) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, jwt.AccessToken, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, jwt.RefreshToken, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

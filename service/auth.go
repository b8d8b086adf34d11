package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/security"
)

// AuthService 凭据存储与令牌签发
type AuthService interface {
	// Register 创建用户，email/username 统一小写
	Register(ctx context.Context, req *dto.RegisterRequest) (*vo.UserProfile, error)

	// Login identifier 可以是邮箱或用户名，成功时返回令牌和资料
	Login(ctx context.Context, req *dto.LoginRequest) (*vo.LoginResponse, error)

	// UpdateProfile 只允许本人修改
	UpdateProfile(ctx context.Context, userID, actingUserID uint64, req *dto.UpdateProfileRequest) (*vo.UserProfile, error)

	// SetAvatar 保存头像文件并更新引用，旧头像尽力删除
	SetAvatar(ctx context.Context, userID uint64, file *dto.FileUpload) (*vo.UserProfile, error)

	// SetRole 调整角色，仅内部接口使用
	SetRole(ctx context.Context, username string, role enums.Role) (*vo.UserProfile, error)

	// RoleOf 从存储读取当前角色，令牌中不携带角色
	RoleOf(ctx context.Context, userID uint64) (enums.Role, error)
}

type authService struct {
	users    gormrepo.UserRepository
	hasher   security.PasswordHasher
	tokens   *security.TokenIssuer
	uploader *uploader
	logger   *zap.Logger
}

func NewAuthService(users gormrepo.UserRepository, hasher security.PasswordHasher, tokens *security.TokenIssuer, store dependencies.FileStore, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		uploader: &uploader{store: store, logger: logger},
		logger:   logger,
	}
}

func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*vo.UserProfile, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeIdentity(req.Email)
	username := normalizeIdentity(req.Username)
	if name == "" || email == "" || username == "" || req.Password == "" {
		return nil, myErrors.InvalidInput("name, email, password and username are required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         enums.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, s.duplicateIdentity(ctx, email)
		}
		s.logger.Error("注册用户失败", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	s.logger.Info("新用户注册成功", zap.Uint64("userID", user.ID), zap.String("username", username))
	return vo.NewUserProfile(user), nil
}

// duplicateIdentity 唯一约束冲突后区分是 email 还是 username
func (s *authService) duplicateIdentity(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err == nil && exists {
		return myErrors.DuplicateIdentity("email already exists")
	}
	return myErrors.DuplicateIdentity("username already exists")
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*vo.LoginResponse, error) {
	identifier := normalizeIdentity(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, myErrors.InvalidInput("identifier and password are required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, myErrors.New(myErrors.ErrInvalidCredential, "incorrect password")
		}
		return nil, fmt.Errorf("校验密码失败: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, snapshotOf(user))
	if err != nil {
		return nil, err
	}
	return &vo.LoginResponse{Token: token, User: vo.NewUserProfile(user)}, nil
}

func snapshotOf(u *entities.User) security.ProfileSnapshot {
	return security.ProfileSnapshot{
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Course:    u.Course,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}

func (s *authService) UpdateProfile(ctx context.Context, userID, actingUserID uint64, req *dto.UpdateProfileRequest) (*vo.UserProfile, error) {
	if userID != actingUserID {
		return nil, myErrors.Forbidden("access denied")
	}
	name := strings.TrimSpace(req.Name)
	username := normalizeIdentity(req.Username)
	if name == "" || username == "" {
		return nil, myErrors.InvalidInput("name and username are required")
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, userID, name, username, req.Course, req.Bio); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, myErrors.DuplicateIdentity("username already exists")
		}
		return nil, fmt.Errorf("更新资料失败: %w", err)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return vo.NewUserProfile(user), nil
}

func (s *authService) SetAvatar(ctx context.Context, userID uint64, file *dto.FileUpload) (*vo.UserProfile, error) {
	if file == nil {
		return nil, myErrors.InvalidInput("no file uploaded")
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref, err := s.uploader.save(ctx, constant.ObjectKeyPrefixAvatars, file)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, userID, ref); err != nil {
		s.uploader.discard(ctx, &ref)
		return nil, fmt.Errorf("更新头像失败: %w", err)
	}
	s.uploader.discard(ctx, user.AvatarURL)

	user.AvatarURL = &ref
	return vo.NewUserProfile(user), nil
}

func (s *authService) SetRole(ctx context.Context, username string, role enums.Role) (*vo.UserProfile, error) {
	if !role.Valid() {
		return nil, myErrors.InvalidInput("invalid role")
	}
	user, err := s.users.GetByUsername(ctx, normalizeIdentity(username))
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("更新角色失败: %w", err)
	}
	s.logger.Info("用户角色已更新", zap.Uint64("userID", user.ID), zap.String("role", string(role)))
	return vo.NewUserProfile(user), nil
}

func (s *authService) RoleOf(ctx context.Context, userID uint64) (enums.Role, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *authService) getUser(ctx context.Context, id uint64) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return user, nil
}

package user

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/jwt"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// LoginUseCase 用户登录用例
// 校验邮箱密码，签发Token对，并保存会话（会话有效期与Refresh Token一致）
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore user.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(identityOf(u))
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.jwtManager.RefreshTokenTTL()); err != nil {
		// 会话保存失败不影响登录，但之后无法刷新Token
		logger.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("保存会话失败")
	}

	return &LoginResponse{
		User:         *toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// RefreshTokenUseCase 用Refresh Token换新的Access Token
// 会话已删除（登出）或用户已删除时拒绝；角色按最新数据签发
type RefreshTokenUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewRefreshTokenUseCase 创建刷新Token用例
func NewRefreshTokenUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore user.SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userService: userService, jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 执行刷新
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	token, err := uc.jwtManager.RefreshAccessToken(refreshToken, func(userID string) (jwt.Identity, error) {
		session, err := uc.sessionStore.GetSession(ctx, userID)
		if err != nil {
			return jwt.Identity{}, err
		}
		if len(session) == 0 {
			return jwt.Identity{}, apperrors.ErrTokenExpired
		}
		u, err := uc.userService.Get(ctx, userID)
		if err != nil {
			return jwt.Identity{}, apperrors.ErrInvalidToken
		}
		return identityOf(u), nil
	})
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: token,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore user.SessionStore
	tokenTTL     time.Duration
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore user.SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, tokenTTL: jwtManager.AccessTokenTTL()}
}

// Execute 删除会话，并把Access Token加入黑名单（防止在过期前继续使用）
func (uc *LogoutUseCase) Execute(ctx context.Context, userID, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.tokenTTL)
}

func identityOf(u *user.User) jwt.Identity {
	return jwt.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// RefreshResponse 刷新Token响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

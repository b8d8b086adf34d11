package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Xushengqwer/campus_service/constant"
)

// ErrInvalidToken 令牌缺失、签名错误或已过期
var ErrInvalidToken = errors.New("invalid token")

// ProfileSnapshot 签发时刻的资料快照。
// 资料修改后已签发的令牌不会更新，除了身份以外不要把这些字段当作最新数据。
type ProfileSnapshot struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Course    *string `json:"course"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// Identity 验证令牌得到的调用者身份。
// ID 在令牌过期前是权威的；Snapshot 可能已过时。
type Identity struct {
	ID       uint64
	Snapshot ProfileSnapshot
}

type claims struct {
	ID uint64 `json:"id"`
	ProfileSnapshot
	jwt.RegisteredClaims
}

// TokenIssuer 签发与验证 HS256 令牌
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer ttl 为 0 时使用默认的 90 天
func NewTokenIssuer(secret string, ttl time.Duration, issuer string) *TokenIssuer {
	if ttl <= 0 {
		ttl = constant.DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// Issue 为 id 签发令牌，snapshot 原样嵌入
func (t *TokenIssuer) Issue(id uint64, snapshot ProfileSnapshot) (string, error) {
	now := t.now()
	c := claims{
		ID:              id,
		ProfileSnapshot: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("签名令牌失败: %w", err)
	}
	return signed, nil
}

// Verify 校验签名与有效期，返回身份
func (t *TokenIssuer) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tk *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ID == 0 {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidToken)
	}
	return &Identity{ID: c.ID, Snapshot: c.ProfileSnapshot}, nil
}

// TTL 令牌有效期
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

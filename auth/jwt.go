package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/tasktracker/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims chứa user id (key "userId") cùng các claim exp/iat
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec ký token HS256 bằng secret của ứng dụng
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue tạo token cho userID, hết hạn sau TTL
func (c *TokenCodec) Issue(userID int64) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify kiểm tra chữ ký, thuật toán và thời hạn rồi trả về user id.
// Mọi lỗi đều là common.ErrInvalidToken bọc nguyên nhân gốc.
func (c *TokenCodec) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, common.ErrInvalidToken
	}
	return claims.UserID, nil
}

// IsExpired cho biết lỗi có phải do token hết hạn hay không
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

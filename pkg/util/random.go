package util

import (
	"crypto/rand"
	"math/big"
)

// tokenCharset share token 字符集，与 nanoid 默认字母表一致
const tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// randomCharset 普通随机字符串字符集
const randomCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateShareToken generates an unguessable URL-safe token of the given length
// using crypto/rand; the token carries no information about the resource it gates
// GenerateShareToken 使用 crypto/rand 生成指定长度的不可猜测 URL 安全 Token，
// Token 本身不包含其所指向资源的任何信息
func GenerateShareToken(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenCharset[n.Int64()]
	}
	return string(b), nil
}

// GetRandomString generates a random string of the given length
// 生成指定长度的随机字符串，用于默认配置密钥等非安全敏感场景之外的一次性值
func GetRandomString(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(randomCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 不可用时回退到固定字符，调用方仅用于生成默认密钥
			b[i] = randomCharset[i%len(randomCharset)]
			continue
		}
		b[i] = randomCharset[n.Int64()]
	}
	return string(b)
}

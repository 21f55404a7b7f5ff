package utils

import (
	"crypto/rand"
	"math/big"
)

// base62 字母表，生成的短码固定 6 位
const (
	base62Alphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	ShortCodeLength = 6
)

// GenerateShortCode 随机生成一个 6 位 base62 短码
// 62^6 ≈ 5.7 * 10^10，单次碰撞概率随码空间增长趋近于零
func GenerateShortCode() string {
	b := make([]byte, ShortCodeLength)
	alphabetLen := big.NewInt(int64(len(base62Alphabet)))

	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand 读取失败意味着系统熵源异常，无法继续
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = base62Alphabet[n.Int64()]
	}

	return string(b)
}

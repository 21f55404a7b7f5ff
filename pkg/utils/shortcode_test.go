package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateShortCode()
		assert.Len(t, code, ShortCodeLength)
		// 生成的码必须能通过自定义短码的校验规则
		assert.NoError(t, ValidateShortCode(code))
	}
}

func TestGenerateShortCode_Distinct(t *testing.T) {
	// 62^6 的码空间里 100 次抽样撞上的概率可以忽略
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateShortCode()
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

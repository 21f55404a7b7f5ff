package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"unicode"
)

// 自定义短码只允许字母、数字、下划线和连字符，长度 1-64
var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxShortCodeLength 短码最大长度（与 short_links.short_code 列宽一致）
const MaxShortCodeLength = 64

// ValidateShortCode 校验 ShortCode 是否合法
func ValidateShortCode(shortCode string) error {
	if shortCode == "" {
		return fmt.Errorf("error.shortcode_required")
	}

	if ContainsWhitespace(shortCode) {
		return fmt.Errorf("error.shortcode_cannot_contain_spaces")
	}

	if len(shortCode) > MaxShortCodeLength {
		return fmt.Errorf("error.shortcode_max_length")
	}

	if !shortCodePattern.MatchString(shortCode) {
		return fmt.Errorf("error.shortcode_invalid")
	}

	return nil
}

// ValidateTargetURL 校验目标 URL 的合法性
func ValidateTargetURL(targetURL string) error {
	// 1. 检查目标 URL 是否为空
	if targetURL == "" {
		return fmt.Errorf("error.target_url_required")
	}

	// 2. URL 格式校验（必须是绝对地址，scheme 限定 http/https）
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("error.target_url_invalid")
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("error.target_url_invalid")
	}

	// 3. URL 长度限制
	if len(targetURL) > 2048 {
		return fmt.Errorf("error.target_url_max_length")
	}
	return nil
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

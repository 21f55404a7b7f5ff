package dto

import (
	"shortly-go/internal/apperrors"
	"shortly-go/pkg/utils"
)

// CreateShortLinkRequest 用于创建短链的请求参数
type CreateShortLinkRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required,max=2048"`
	CustomCode  string `json:"customCode" binding:"omitempty,max=64"` // 可选自定义短码
}

// CreateShortLinkResponse 创建成功后返回生成的短码
type CreateShortLinkResponse struct {
	ShortCode string `json:"shortCode"`
}

// Validate 自定义验证逻辑（binding 标签覆盖不到的规则）
// 校验在任何存储写入之前执行，失败无副作用
func (r *CreateShortLinkRequest) Validate() *apperrors.AppError {
	// 1. 目标 URL 必须是 http/https 绝对地址
	if err := utils.ValidateTargetURL(r.OriginalURL); err != nil {
		return apperrors.InvalidURL()
	}

	// 2. 自定义短码可选，传了就要符合字符集规则
	if r.CustomCode != "" {
		if err := utils.ValidateShortCode(r.CustomCode); err != nil {
			return apperrors.InvalidAlias()
		}
	}

	return nil
}

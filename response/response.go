package response

// ErrorBody 错误响应结构，与前端约定保持一致：{"error": "..."}
type ErrorBody struct {
	Error string `json:"error"`
}

// PageResponse 分页响应结构体
type PageResponse[T any] struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
	List      []T `json:"list"`
}

// Error 构造一个失败的响应
func Error(message string) *ErrorBody {
	return &ErrorBody{Error: message}
}

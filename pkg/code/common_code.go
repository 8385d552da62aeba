package code

// Common status codes
// 通用状态码
var (
	Success = NewSuss(0, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	Failed = NewError(1, lang{
		en:    "Failed",
		zh_cn: "失败",
	})
	ErrorInvalidParams = NewError(10001, lang{
		en:    "Invalid request parameters",
		zh_cn: "请求参数错误",
	})
	ErrorNotFoundAPI = NewError(10002, lang{
		en:    "API not found",
		zh_cn: "接口不存在",
	})
	ErrorTooManyRequests = NewError(10003, lang{
		en:    "Too many requests",
		zh_cn: "请求过多",
	})
	ErrorServerInternal = NewError(10004, lang{
		en:    "Internal server error",
		zh_cn: "服务器内部错误",
	})
	ErrorDBQuery = NewError(10005, lang{
		en:    "Database query error",
		zh_cn: "数据库查询错误",
	})
)

// User status codes
// 用户状态码
var (
	ErrorNotUserAuthToken = NewError(20001, lang{
		en:    "Missing auth token",
		zh_cn: "缺少用户认证令牌",
	})
	ErrorInvalidUserAuthToken = NewError(20002, lang{
		en:    "Invalid auth token",
		zh_cn: "用户认证令牌无效",
	})
	ErrorUserEmailExists = NewError(20003, lang{
		en:    "Email is already registered",
		zh_cn: "邮箱已被注册",
	})
	ErrorUserNotFound = NewError(20004, lang{
		en:    "Invalid email or password",
		zh_cn: "邮箱或密码错误",
	})
	ErrorUserPasswordWrong = NewError(20005, lang{
		en:    "Invalid email or password",
		zh_cn: "邮箱或密码错误",
	})
	ErrorUserRegisterDisabled = NewError(20006, lang{
		en:    "Registration is disabled",
		zh_cn: "注册功能已关闭",
	})
)

// Note status codes
// 笔记状态码
var (
	ErrorNoteNotFound = NewError(30001, lang{
		en:    "Note not found",
		zh_cn: "笔记不存在",
	})
	ErrorNoteCreateFailed = NewError(30002, lang{
		en:    "Failed to create note",
		zh_cn: "笔记创建失败",
	})
	ErrorNoteUpdateFailed = NewError(30003, lang{
		en:    "Failed to update note",
		zh_cn: "笔记更新失败",
	})
	ErrorNoteDeleteFailed = NewError(30004, lang{
		en:    "Failed to delete note",
		zh_cn: "笔记删除失败",
	})
	ErrorAutosaveRejected = NewError(30005, lang{
		en:    "Autosave session unavailable",
		zh_cn: "自动保存会话不可用",
	})
)

// Share status codes
// 分享状态码
var (
	ErrorShareNotFound = NewError(40001, lang{
		en:    "Shared note not found",
		zh_cn: "分享不存在",
	})
	ErrorShareCreateFailed = NewError(40002, lang{
		en:    "Failed to create share link",
		zh_cn: "分享链接创建失败",
	})
	ErrorShareRevoked = NewError(40003, lang{
		en:    "Share link has been revoked",
		zh_cn: "分享链接已被撤销",
	})
)

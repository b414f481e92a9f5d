package code

// 通用码
var (
	Success         = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessNoChange = NewSuss(201, lang{en: "Success, nothing changed", zh_cn: "成功，无变更"})

	ErrorServerInternal   = NewError(10000, lang{en: "Server internal error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams    = NewError(10001, lang{en: "Invalid request parameters", zh_cn: "请求参数错误"})
	ErrorNotFoundAPI      = NewError(10002, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests  = NewError(10003, lang{en: "Too many requests", zh_cn: "请求过于频繁"})
	ErrorDBQuery          = NewError(10004, lang{en: "Database query error", zh_cn: "数据库查询错误"})
	ErrorContextTimeout   = NewError(10005, lang{en: "Request context timeout", zh_cn: "请求上下文超时"})
	ErrorInvalidMessage   = NewError(10006, lang{en: "Invalid message format", zh_cn: "消息格式错误"})
	ErrorServerInShutdown = NewError(10007, lang{en: "Server is shutting down", zh_cn: "服务器正在关闭"})
)

// 用户相关
var (
	ErrorNotUserAuthToken         = NewError(20001, lang{en: "Auth token is missing", zh_cn: "缺少用户认证令牌"})
	ErrorInvalidUserAuthToken     = NewError(20002, lang{en: "Auth token is invalid or expired", zh_cn: "用户认证令牌无效或已过期"})
	ErrorUserNotFound             = NewError(20003, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorUserAlreadyExists        = NewError(20004, lang{en: "User already exists", zh_cn: "用户已存在"})
	ErrorUserRegisterFailed       = NewError(20005, lang{en: "User registration failed", zh_cn: "用户注册失败"})
	ErrorUserLoginFailed          = NewError(20006, lang{en: "Incorrect email or password", zh_cn: "邮箱或密码错误"})
	ErrorUserRegisterDisabled     = NewError(20007, lang{en: "User registration is disabled", zh_cn: "用户注册已关闭"})
	ErrorUserChangePasswordFailed = NewError(20008, lang{en: "Password change failed", zh_cn: "修改密码失败"})
	ErrorUserEmailAlreadyExists   = NewError(20009, lang{en: "Email already registered", zh_cn: "邮箱已被注册"})
	ErrorUserPasswordNotMatch     = NewError(20010, lang{en: "Passwords do not match", zh_cn: "两次输入的密码不一致"})
	ErrorUserOldPasswordFailed    = NewError(20011, lang{en: "Old password is incorrect", zh_cn: "旧密码错误"})
	ErrorPasswordNotValid         = NewError(20012, lang{en: "Password is not valid", zh_cn: "密码不合法"})
	ErrorUsernameNotValid         = NewError(20013, lang{en: "Username is not valid", zh_cn: "用户名不合法"})
	ErrorTokenGenerate            = NewError(20014, lang{en: "Token generation failed", zh_cn: "令牌生成失败"})
)

// 文档相关
var (
	ErrorDocumentNotFound     = NewError(30001, lang{en: "Document not found", zh_cn: "文档不存在"})
	ErrorDocumentCreateFailed = NewError(30002, lang{en: "Document creation failed", zh_cn: "文档创建失败"})
	ErrorDocumentSaveFailed   = NewError(30003, lang{en: "Document save failed", zh_cn: "文档保存失败"})
	ErrorDocumentDeleteFailed = NewError(30004, lang{en: "Document deletion failed", zh_cn: "文档删除失败"})
	ErrorDocumentListFailed   = NewError(30005, lang{en: "Document list query failed", zh_cn: "文档列表查询失败"})
)

// 版本历史相关
var (
	ErrorVersionNotFound      = NewError(40001, lang{en: "Version not found", zh_cn: "版本不存在"})
	ErrorVersionCreateFailed  = NewError(40002, lang{en: "Version creation failed", zh_cn: "版本创建失败"})
	ErrorVersionCompareFailed = NewError(40003, lang{en: "Version comparison failed", zh_cn: "版本比较失败"})
	ErrorVersionRestoreFailed = NewError(40004, lang{en: "Version restore failed", zh_cn: "版本恢复失败"})
	ErrorVersionTagFailed     = NewError(40005, lang{en: "Version tagging failed", zh_cn: "版本标记失败"})
	ErrorVersionListFailed    = NewError(40006, lang{en: "Version list query failed", zh_cn: "版本列表查询失败"})
)

// 协作会话相关
var (
	ErrorNotRoomMember      = NewError(50001, lang{en: "Connection has not joined the document", zh_cn: "连接尚未加入该文档"})
	ErrorDocumentJoinFailed = NewError(50002, lang{en: "Failed to join document session", zh_cn: "加入文档协作失败"})
)

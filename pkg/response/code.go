package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 鉴权错误 100xx
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 订单模块错误 300xx
	ErrOrderNotFound = 30001
	ErrOrderConflict = 30002
	ErrEmptyCart     = 30003

	// 支付模块错误 400xx
	ErrGatewayUnavailable = 40001
	ErrGatewayProtocol    = 40002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)

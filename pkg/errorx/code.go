package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	PermissionDenied Code = 100003

	// Lottery lifecycle codes
	InvalidConfiguration Code = 200001
	DuplicateLottery     Code = 200002
	LotteryNotFound      Code = 200003
	LotteryNotOpen       Code = 200004
	LotteryExpired       Code = 200005
	CapacityExhausted    Code = 200006
	InvalidTransition    Code = 200007
	NoTickets            Code = 200008

	// Dependency codes
	DependencyFailure Code = 300001
)

// promo-service/internal/domain/errors.go
package domain

import "github.com/pkg/errors"

// 领域错误。都是边界可恢复的：接口层把它们映射为对用户友好的
// HTTP 状态码和文案，任何一个都不应导致进程崩溃。
var (
	// ErrPromoNotFound 活动不存在（或对外不可见）
	ErrPromoNotFound = errors.New("promo not found")

	// ErrPromoClosed 活动未开放（未开始、已截止或未发布）
	ErrPromoClosed = errors.New("promo is not opened")

	// ErrAlreadyEntered 该参与者已经报过名（无论答案是否已发布）
	ErrAlreadyEntered = errors.New("participant has already entered this promo")

	// ErrRulesNotAccepted 参与者没有勾选同意活动规则
	ErrRulesNotAccepted = errors.New("participant has to agree with the rules")

	// ErrIncompleteEntry 表单要求的内容一项都没填
	ErrIncompleteEntry = errors.New("entry payload is incomplete for this form type")

	// ErrNotEligible 参与者不满足活动配置的准入规则
	ErrNotEligible = errors.New("participant is not eligible for this promo")

	// ErrConfiguration 活动自身配置非法（未知 form type token、窗口倒置等）
	ErrConfiguration = errors.New("invalid promo configuration")

	// ErrNoFile 答案没有附带文件
	ErrNoFile = errors.New("answer has no file")
)

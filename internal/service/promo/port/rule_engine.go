package port

import "promos/internal/service/promo/domain"

// RuleEngine 是准入规则评估的出站端口。
// rule 是活动上配置的表达式，fact 是参与者的事实集合。
type RuleEngine interface {
	// Evaluate 返回参与者是否满足规则。
	// 规则本身非法时返回 domain.ErrConfiguration。
	Evaluate(rule string, fact domain.Fact) (bool, error)
}

// promo-service/internal/domain/participant.go
package domain

import "time"

// Participant 是身份服务提供的、已经完成认证的参与者身份。
// 本服务只消费，不做任何认证。Birthday 可以为零值（身份服务未采集时）。
type Participant struct {
	ID       string
	Name     string
	Email    string
	Birthday time.Time
}

// Fact 是交给规则引擎评估的参与者事实集合。
type Fact map[string]interface{}

// Fact 把参与者属性展开成规则引擎可以引用的变量。
// age 在 Birthday 为零值时为 -1，规则里可以据此区分"未知年龄"。
func (p Participant) Fact(now time.Time) Fact {
	age := -1
	if !p.Birthday.IsZero() {
		age = int(now.Sub(p.Birthday).Hours() / 24 / 365.25)
	}
	return Fact{
		"name":  p.Name,
		"email": p.Email,
		"age":   age,
	}
}

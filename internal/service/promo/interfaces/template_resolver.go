package interfaces

import "fmt"

// TemplateCandidates 返回详情页模板的回退搜索顺序，
// 渲染服务按序使用第一个存在的模板：
//
//  1. 频道 + 活动专属     promos/<channel>/<slug>.html
//  2. 频道通用           promos/<channel>/promo_detail.html
//  3. 活动专属（跨频道）  promos/<slug>.html
//  4. 兜底               promos/promo_detail.html
//
// 活动已截止时使用 _closed 后缀的模板族。
func TemplateCandidates(channelSlug, promoSlug string, open bool) []string {
	suffix := "_detail"
	if !open {
		suffix = "_closed"
	}

	var names []string
	if channelSlug != "" {
		names = append(names,
			fmt.Sprintf("promos/%s/%s.html", channelSlug, promoSlug),
			fmt.Sprintf("promos/%s/promo%s.html", channelSlug, suffix),
		)
	}
	names = append(names,
		fmt.Sprintf("promos/%s.html", promoSlug),
		fmt.Sprintf("promos/promo%s.html", suffix),
	)
	return names
}

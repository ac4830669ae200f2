package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// mgsCodePattern 匹配 MGS 原始品番：可选数字前缀 + 字母段 + 数字段
// 例如 ABC123 / 300MIUM123 / abc-123
var mgsCodePattern = regexp.MustCompile(`^(\d*[A-Za-z]+)[-_ ]?(\d+)$`)

// NormalizeMGSProductID 将 MGS 品番规范化为"字母段-数字段"形式（大写）。
// 已规范化的输入原样返回（幂等），无法识别的格式只做大写处理。
func NormalizeMGSProductID(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	m := mgsCodePattern.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	return m[1] + "-" + m[2]
}

// ConvertFanzaToDirectURL 把 FANZA 联盟跳转链接还原为目标直链。
// 跳转链接的 lurl 参数带有百分号编码的目标地址；不含 lurl 的 URL 原样返回。
func ConvertFanzaToDirectURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	lurl := u.Query().Get("lurl")
	if lurl == "" {
		return rawURL
	}
	// Query() 已做过一次解码，这里拿到的就是目标直链
	return lurl
}

// GetAffiliateURL 返回可用的联盟链接，空白输入返回空字符串
func GetAffiliateURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	return rawURL
}

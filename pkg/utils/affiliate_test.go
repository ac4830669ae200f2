package utils

import "testing"

func TestNormalizeMGSProductID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"小写无连字符", "abc123", "ABC-123"},
		{"已规范化幂等", "ABC-123", "ABC-123"},
		{"数字前缀系列", "300MIUM-123", "300MIUM-123"},
		{"数字前缀无连字符", "300mium123", "300MIUM-123"},
		{"下划线分隔", "siro_4012", "SIRO-4012"},
		{"空格分隔", "siro 4012", "SIRO-4012"},
		{"前后空白", "  abc-123  ", "ABC-123"},
		{"无法识别只转大写", "何これ", "何これ"},
		{"空串", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMGSProductID(tc.in); got != tc.want {
				t.Errorf("NormalizeMGSProductID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	// 幂等性：对输出再跑一次结果不变
	out := NormalizeMGSProductID("300mium123")
	if again := NormalizeMGSProductID(out); again != out {
		t.Errorf("not idempotent: %q -> %q", out, again)
	}
}

func TestConvertFanzaToDirectURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"带 lurl 参数",
			"https://al.fanza.example.com/?lurl=https%3A%2F%2Fwww.dmm.example.com%2Fdigital%2Fvideoa%2F-%2Fdetail%2F%3D%2Fcid%3Dabc00123%2F&af_id=demo-001",
			"https://www.dmm.example.com/digital/videoa/-/detail/=/cid=abc00123/",
		},
		{
			"无 lurl 原样返回",
			"https://www.dmm.example.com/digital/videoa/-/detail/=/cid=abc00123/",
			"https://www.dmm.example.com/digital/videoa/-/detail/=/cid=abc00123/",
		},
		{
			"lurl 为空原样返回",
			"https://al.fanza.example.com/?lurl=&af_id=demo-001",
			"https://al.fanza.example.com/?lurl=&af_id=demo-001",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertFanzaToDirectURL(tc.in); got != tc.want {
				t.Errorf("ConvertFanzaToDirectURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGetAffiliateURL(t *testing.T) {
	if got := GetAffiliateURL(""); got != "" {
		t.Errorf("empty input should return empty, got %q", got)
	}
	if got := GetAffiliateURL("   "); got != "" {
		t.Errorf("blank input should return empty, got %q", got)
	}
	if got := GetAffiliateURL(" https://example.com/x "); got != "https://example.com/x" {
		t.Errorf("should trim whitespace, got %q", got)
	}
}

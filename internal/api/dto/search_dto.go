package dto

// AutocompleteProduct 自动补全中的商品候选
type AutocompleteProduct struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// AutocompleteActress 自动补全中的演员候选
type AutocompleteActress struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AutocompleteData 搜索自动补全响应数据
type AutocompleteData struct {
	Products  []AutocompleteProduct `json:"products"`
	Actresses []AutocompleteActress `json:"actresses"`
}

package repository

import "testing"

func intPtr(v int) *int { return &v }

func TestProductFilterNormalize(t *testing.T) {
	t.Run("非法分页回退默认", func(t *testing.T) {
		f := &ProductFilter{Page: -3, PageSize: 0}
		f.Normalize()
		if f.Page != 1 || f.PageSize != 20 {
			t.Errorf("got page=%d pageSize=%d, want 1/20", f.Page, f.PageSize)
		}
	})

	t.Run("超大页宽回退默认", func(t *testing.T) {
		f := &ProductFilter{Page: 2, PageSize: 500}
		f.Normalize()
		if f.PageSize != 20 {
			t.Errorf("got pageSize=%d, want 20", f.PageSize)
		}
		if f.Page != 2 {
			t.Errorf("valid page should be kept, got %d", f.Page)
		}
	})

	t.Run("未知排序回退默认", func(t *testing.T) {
		f := &ProductFilter{Sort: "priceDesc; DROP TABLE products"}
		f.Normalize()
		if f.Sort != DefaultProductSort {
			t.Errorf("got sort=%q, want %q", f.Sort, DefaultProductSort)
		}
	})

	t.Run("白名单排序保留", func(t *testing.T) {
		f := &ProductFilter{Sort: "priceAsc"}
		f.Normalize()
		if f.Sort != "priceAsc" {
			t.Errorf("got sort=%q, want priceAsc", f.Sort)
		}
	})

	t.Run("价格区间颠倒时交换", func(t *testing.T) {
		f := &ProductFilter{MinPrice: intPtr(3000), MaxPrice: intPtr(1000)}
		f.Normalize()
		if *f.MinPrice != 1000 || *f.MaxPrice != 3000 {
			t.Errorf("got min=%d max=%d, want 1000/3000", *f.MinPrice, *f.MaxPrice)
		}
	})

	t.Run("单边价格不动", func(t *testing.T) {
		f := &ProductFilter{MinPrice: intPtr(500)}
		f.Normalize()
		if f.MinPrice == nil || *f.MinPrice != 500 || f.MaxPrice != nil {
			t.Error("one-sided price bound should be left as is")
		}
	})
}

func TestProductFilterOffset(t *testing.T) {
	cases := []struct {
		page, pageSize, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 50, 100},
		{10, 7, 63},
	}
	for _, tc := range cases {
		f := &ProductFilter{Page: tc.page, PageSize: tc.pageSize}
		f.Normalize()
		if got := f.Offset(); got != tc.want {
			t.Errorf("Offset(page=%d size=%d) = %d, want %d", tc.page, tc.pageSize, got, tc.want)
		}
	}
}

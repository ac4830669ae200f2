package model

import "time"

// FavoriteList 用户收藏清单
// 私有清单仅所有者可见；删除清单时级联删除其条目（仅限本清单）
type FavoriteList struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;comment:清单标识" json:"id"`
	UserID      int64     `gorm:"not null;index:idx_lists_user_id;comment:所有者ID" json:"user_id"`
	Slug        string    `gorm:"size:64;not null;uniqueIndex;comment:公开分享标识" json:"slug"`
	Title       string    `gorm:"size:200;not null;comment:清单标题" json:"title"`
	Description string    `gorm:"type:text;comment:清单说明" json:"description"`
	IsPublic    bool      `gorm:"default:false;index:idx_lists_is_public;comment:是否公开" json:"is_public"`
	LikeCount   int64     `gorm:"default:0;comment:点赞数" json:"like_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	User  User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []FavoriteListItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (FavoriteList) TableName() string {
	return "favorite_lists"
}

// FavoriteListItem 收藏清单条目，按 position 排序
type FavoriteListItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:条目标识" json:"id"`
	ListID    int64     `gorm:"not null;uniqueIndex:uq_list_product;index:idx_list_items_list_id;comment:清单ID" json:"list_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:uq_list_product;comment:商品ID" json:"product_id"`
	Position  int       `gorm:"default:0;comment:排序位置" json:"position"`
	Note      string    `gorm:"size:500;comment:备注" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`

	// 关联关系
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (FavoriteListItem) TableName() string {
	return "favorite_list_items"
}

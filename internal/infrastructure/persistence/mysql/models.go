package mysql

import (
	"time"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/user"
)

// UserModel 用户表
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt）"`
	Nickname  string    `gorm:"size:50;not null;comment:昵称"`
	Role      string    `gorm:"size:20;not null;default:user;comment:角色"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

// BookModel 图书表，价格单位为分
type BookModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	ISBN          *string   `gorm:"uniqueIndex;size:20;comment:ISBN号(可为空)"`
	Title         string    `gorm:"index;size:200;not null;comment:书名"`
	Author        string    `gorm:"size:100;not null;comment:作者"`
	Publisher     string    `gorm:"size:100;comment:出版社"`
	Description   string    `gorm:"type:text"`
	Price         int64     `gorm:"index:idx_list;not null;comment:价格(分)"`
	Stock         int       `gorm:"not null;default:0;comment:库存"`
	Category      string    `gorm:"index;size:50;not null;comment:分类"`
	ImageURL      string    `gorm:"size:500"`
	Language      string    `gorm:"size:30"`
	Pages         int       `gorm:"default:0"`
	PublishedDate string    `gorm:"size:10"`
	Featured      bool      `gorm:"index;default:false"`
	CreatedAt     time.Time `gorm:"index:idx_list"`
	UpdatedAt     time.Time
}

func (BookModel) TableName() string { return "books" }

// OrderModel 订单表，收货信息与快递信息平铺在同一行
type OrderModel struct {
	ID            string           `gorm:"primaryKey;size:36"`
	OrderNo       string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID        string           `gorm:"index:idx_user_created;size:36;not null"`
	Subtotal      int64            `gorm:"not null"`
	CourierCharge int64            `gorm:"not null;default:0"`
	CODFee        int64            `gorm:"column:cod_fee;not null;default:0"`
	Total         int64            `gorm:"not null;comment:订单总金额(分)"`
	Status        string           `gorm:"index;size:20;not null;default:pending"`
	Shipping      ShippingColumns  `gorm:"embedded;embeddedPrefix:ship_"`
	Shipment      ShipmentColumns  `gorm:"embedded;embeddedPrefix:courier_"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time        `gorm:"index:idx_user_created"`
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string { return "orders" }

type ShippingColumns struct {
	Name       string `gorm:"size:100"`
	Phone      string `gorm:"size:30"`
	Email      string `gorm:"size:100"`
	Address    string `gorm:"size:500"`
	City       string `gorm:"size:100"`
	PostalCode string `gorm:"size:20"`
	Note       string `gorm:"size:500"`
}

type ShipmentColumns struct {
	ConsignmentID string `gorm:"index;size:50"`
	TrackingCode  string `gorm:"size:50"`
	Status        string `gorm:"size:50"`
	ShippedAt     *time.Time
}

// OrderItemModel 订单明细，保存下单时的图书快照
type OrderItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  string `gorm:"index;size:36;not null"`
	Position int    `gorm:"not null;default:0"`
	BookID   string `gorm:"index;size:36;not null"`
	Title    string `gorm:"size:200"`
	Author   string `gorm:"size:100"`
	Price    int64  `gorm:"not null;comment:下单时单价(分)"`
	Quantity int    `gorm:"not null"`
	ImageURL string `gorm:"size:500"`
}

func (OrderItemModel) TableName() string { return "order_items" }

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Nickname:  u.Nickname,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserEntity(m *UserModel) *user.User {
	role, ok := user.ParseRole(m.Role)
	if !ok {
		role = user.RoleUser
	}
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Nickname:  m.Nickname,
		Role:      role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		ISBN:          nullableString(b.ISBN),
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Description:   b.Description,
		Price:         b.Price,
		Stock:         b.Stock,
		Category:      b.Category,
		ImageURL:      b.ImageURL,
		Language:      b.Language,
		Pages:         b.Pages,
		PublishedDate: b.PublishedDate,
		Featured:      b.Featured,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		ISBN:          derefString(m.ISBN),
		Title:         m.Title,
		Author:        m.Author,
		Publisher:     m.Publisher,
		Description:   m.Description,
		Price:         m.Price,
		Stock:         m.Stock,
		Category:      m.Category,
		ImageURL:      m.ImageURL,
		Language:      m.Language,
		Pages:         m.Pages,
		PublishedDate: m.PublishedDate,
		Featured:      m.Featured,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemModel{
			OrderID:  o.ID,
			Position: i,
			BookID:   it.BookID,
			Title:    it.Title,
			Author:   it.Author,
			Price:    it.Price,
			Quantity: it.Quantity,
			ImageURL: it.ImageURL,
		}
	}
	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Subtotal:      o.Subtotal,
		CourierCharge: o.CourierCharge,
		CODFee:        o.CODFee,
		Total:         o.Total,
		Status:        string(o.Status),
		Shipping:      ShippingColumns(o.Shipping),
		Shipment: ShipmentColumns{
			ConsignmentID: o.Shipment.ConsignmentID,
			TrackingCode:  o.Shipment.TrackingCode,
			Status:        o.Shipment.CourierStatus,
			ShippedAt:     o.Shipment.ShippedAt,
		},
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	items := make([]order.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = order.Item{
			BookID:   it.BookID,
			Title:    it.Title,
			Author:   it.Author,
			Price:    it.Price,
			Quantity: it.Quantity,
			ImageURL: it.ImageURL,
		}
	}
	return &order.Order{
		ID:            m.ID,
		OrderNo:       m.OrderNo,
		UserID:        m.UserID,
		Items:         items,
		Subtotal:      m.Subtotal,
		CourierCharge: m.CourierCharge,
		CODFee:        m.CODFee,
		Total:         m.Total,
		Shipping:      order.ShippingAddress(m.Shipping),
		Status:        order.Status(m.Status),
		Shipment: order.Shipment{
			ConsignmentID: m.Shipment.ConsignmentID,
			TrackingCode:  m.Shipment.TrackingCode,
			CourierStatus: m.Shipment.Status,
			ShippedAt:     m.Shipment.ShippedAt,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// nullableString 空字符串存为NULL（唯一索引允许多个NULL）
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"         json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null"    json:"email"`
	PasswordHash string     `gorm:"not null"                         json:"-"`
	Telephone    *string    `gorm:"size:16;uniqueIndex"              json:"telephone,omitempty"`
	FirstName    string     `gorm:"size:100"                         json:"first_name"`
	LastName     string     `gorm:"size:100"                         json:"last_name"`
	Role         string     `gorm:"size:16;not null;default:user"    json:"role"`
	IsActive     bool       `gorm:"not null;default:true"            json:"is_active"`
	IsSuperuser  bool       `gorm:"not null;default:false"           json:"is_superuser"`
	IsVerified   bool       `gorm:"not null;default:false"           json:"is_verified"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u User) PrimaryKey() uint { return u.ID }

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name        string          `gorm:"size:150;not null"                         json:"name"`
	Description string          `gorm:"type:text"                                 json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"               json:"price"`
	OwnerID     uint            `gorm:"index;not null"                            json:"owner_id"`
	Owner       *User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	IsActive    bool            `gorm:"not null;default:false"                    json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p Product) PrimaryKey() uint { return p.ID }

// CartItem is one line of a user's cart. Price is the snapshot
// product.price * quantity taken when the line was added or last updated.
type CartItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"                       json:"id"`
	ProductID uint            `gorm:"not null"                                       json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	OwnerID   uint            `gorm:"index;not null"                                 json:"owner_id"`
	Owner     *User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int             `gorm:"not null;check:quantity >= 0"                   json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"price"`
	IsActive  bool            `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (c CartItem) PrimaryKey() uint { return c.ID }

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	UserID    uint      `gorm:"index;not null"          json:"user_id"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null" json:"jti"`
	TokenHash string    `gorm:"size:64;not null"        json:"-"`
	ExpiresAt time.Time `gorm:"not null"                json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"  json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &RefreshToken{}}
}

package model

// User is an event organizer (users).
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);not null"        json:"name"`
	Email        string `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"        json:"-"`
	Phone        string `gorm:"type:varchar(20)"                  json:"phone,omitempty"`
}

func (User) TableName() string { return "users" }

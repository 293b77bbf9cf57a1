package models

import "time"

// UserModel represents a snippet owner. Account management lives outside this
// service; rows here exist so results can denormalize owner names and so JWT
// subjects resolve to something.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
}

func (UserModel) TableName() string { return "users" }

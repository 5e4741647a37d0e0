package mysql

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"discussify/internal/model"
)

var DB *gorm.DB

func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AutoMigrate creates or updates every model's table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.CommunityBan{},
		&model.Post{},
		&model.Comment{},
		&model.PostVote{},
		&model.CommentVote{},
		&model.PostReport{},
		&model.Notification{},
	)
}

package models

// Database is the connection record the BI application uses to reach a
// relational store. Exactly one record exists per DatabaseName.
type Database struct {
	ID            uint   `gorm:"primaryKey;column:id" json:"id"`
	DatabaseName  string `gorm:"column:database_name;size:250;uniqueIndex" json:"database_name" validate:"required"`
	SqlalchemyURI string `gorm:"column:sqlalchemy_uri;size:1024" json:"sqlalchemy_uri" validate:"required"` // Connection string handed to the application
}

// TableName specifies the static table name for GORM.
func (Database) TableName() string {
	return "dbs"
}

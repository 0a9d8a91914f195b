package models

// Dashboard is a titled, laid-out collection of slices. Slug is the stable key.
type Dashboard struct {
	ID             uint     `gorm:"primaryKey;column:id" json:"id"`
	DashboardTitle string   `gorm:"column:dashboard_title;size:500" json:"dashboard_title" validate:"required"`
	Slug           string   `gorm:"column:slug;size:255;uniqueIndex" json:"slug" validate:"required"`
	PositionJSON   string   `gorm:"column:position_json;type:text" json:"position_json"` // Grid layout, one entry per slot
	Slices         []*Slice `gorm:"many2many:dashboard_slices" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Dashboard) TableName() string {
	return "dashboards"
}

// CssTemplate is a named stylesheet offered in the dashboard CSS editor.
type CssTemplate struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	TemplateName string `gorm:"column:template_name;size:250;uniqueIndex" json:"template_name" validate:"required"`
	Css          string `gorm:"column:css;type:text" json:"css"`
}

// TableName specifies the static table name for GORM.
func (CssTemplate) TableName() string {
	return "css_templates"
}

// All returns every model the loader writes, in migration order.
func All() []interface{} {
	return []interface{}{
		&Database{},
		&SearchCluster{},
		&SqlTable{},
		&SearchDatasource{},
		&Column{},
		&Metric{},
		&Slice{},
		&Dashboard{},
		&CssTemplate{},
	}
}

package models

import "gorm.io/datatypes"

// SearchCluster references an Elasticsearch cluster by a list of node URLs.
type SearchCluster struct {
	ID          uint                        `gorm:"primaryKey;column:id" json:"id"`
	ClusterName string                      `gorm:"column:cluster_name;size:250;uniqueIndex" json:"cluster_name" validate:"required"`
	URLs        datatypes.JSONSlice[string] `gorm:"column:urls" json:"urls" validate:"required,min=1"`
}

// TableName specifies the static table name for GORM.
func (SearchCluster) TableName() string {
	return "elasticsearch_clusters"
}

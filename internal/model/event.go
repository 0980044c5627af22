// Package model defines the database models shared by the services.
package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forge-io/agentforge/pkg/utils/json"
)

// StringList stores a string slice as a JSON text column.
// Keeps the schema portable between Postgres and the sqlite test driver.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Event represents an extracted event in the database.
type Event struct {
	ID              uint64         `json:"id" gorm:"primaryKey;autoIncrement;comment:事件ID"`
	Name            string         `json:"name" gorm:"size:512;not null;index:idx_name;comment:事件名称"`
	Description     string         `json:"description" gorm:"type:text;comment:事件描述"`
	StartTime       *time.Time     `json:"start_time" gorm:"index:idx_start_time;comment:开始时间"`
	EndTime         *time.Time     `json:"end_time" gorm:"comment:结束时间"`
	Location        string         `json:"location" gorm:"size:512;comment:地点"`
	Organizer       string         `json:"organizer" gorm:"size:255;comment:主办方"`
	Speakers        StringList     `json:"speakers" gorm:"type:text;comment:演讲者列表(JSON)"`
	RegistrationURL string         `json:"registration_url" gorm:"size:1024;comment:报名链接"`
	ImageURL        string         `json:"image_url" gorm:"size:1024;comment:海报图片"`
	SourceURL       string         `json:"source_url" gorm:"size:1024;not null;uniqueIndex:uk_source_url;comment:来源URL"`
	Platform        string         `json:"platform" gorm:"size:32;index:idx_platform;comment:来源平台"`
	StorageTier     string         `json:"storage_tier" gorm:"size:16;index:idx_storage_tier;comment:存储层级"`
	Score           int            `json:"score" gorm:"comment:完整度评分 0-100"`
	CreatedAt       int64          `json:"created_at" gorm:"autoCreateTime:milli;comment:创建时间(时间戳)"`
	UpdatedAt       int64          `json:"updated_at" gorm:"autoUpdateTime:milli;comment:更新时间(时间戳)"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index;comment:软删除时间"`
}

// EventList contains a list of events and pagination info.
type EventList struct {
	TotalCount int64    `json:"totalCount"`
	Items      []*Event `json:"items"`
}

// TableName returns the table name for GORM.
func (e *Event) TableName() string {
	return "events"
}

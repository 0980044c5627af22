package model

// Extraction status values.
const (
	ExtractionStatusSuccess  = "success"
	ExtractionStatusRejected = "rejected"
	ExtractionStatusFailed   = "failed"
)

// Extraction represents one extraction job record.
// Every job gets a record, including rejected and failed ones.
type Extraction struct {
	ID          string `json:"id" gorm:"primaryKey;size:26;comment:任务ID(ULID)"`
	URL         string `json:"url" gorm:"size:1024;not null;comment:请求URL"`
	FinalURL    string `json:"final_url" gorm:"size:1024;comment:重定向后的最终URL"`
	Platform    string `json:"platform" gorm:"size:32;index:idx_ext_platform;comment:来源平台"`
	ContentTier string `json:"content_tier" gorm:"size:16;comment:产出最优结果的内容层级"`
	StorageTier string `json:"storage_tier" gorm:"size:16;index:idx_ext_storage_tier;comment:存储层级"`
	Score       int    `json:"score" gorm:"comment:完整度评分 0-100"`
	Status      string `json:"status" gorm:"size:16;index:idx_ext_status;comment:任务状态"`
	Error       string `json:"error,omitempty" gorm:"size:1024;comment:失败原因"`
	EventID     uint64 `json:"event_id,omitempty" gorm:"index:idx_ext_event;comment:关联事件ID"`
	DurationMs  int64  `json:"duration_ms" gorm:"comment:任务耗时(毫秒)"`
	CreatedAt   int64  `json:"created_at" gorm:"autoCreateTime:milli;comment:创建时间(时间戳)"`
}

// ExtractionList contains a list of extractions and pagination info.
type ExtractionList struct {
	TotalCount int64         `json:"totalCount"`
	Items      []*Extraction `json:"items"`
}

// TableName returns the table name for GORM.
func (e *Extraction) TableName() string {
	return "extractions"
}

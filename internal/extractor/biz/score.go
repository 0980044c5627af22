package biz

import "time"

// Draft 各内容层级产出的候选事件字段。
type Draft struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Location        string     `json:"location"`
	Organizer       string     `json:"organizer"`
	Speakers        []string   `json:"speakers"`
	RegistrationURL string     `json:"registration_url"`
	ImageURL        string     `json:"image_url"`
}

// 字段完整度权重，总和 100。
const (
	weightName         = 20
	weightStartTime    = 20
	weightLocation     = 15
	weightDescription  = 15
	weightOrganizer    = 10
	weightSpeakers     = 8
	weightRegistration = 7
	weightImage        = 5
)

// minDescriptionLength 描述字段计分的最小长度。
const minDescriptionLength = 40

// Score 计算事件字段的完整度评分（0-100）。
func (d *Draft) Score() int {
	if d == nil {
		return 0
	}

	score := 0
	if d.Name != "" {
		score += weightName
	}
	if d.StartTime != nil && !d.StartTime.IsZero() {
		score += weightStartTime
	}
	if d.Location != "" {
		score += weightLocation
	}
	if len(d.Description) >= minDescriptionLength {
		score += weightDescription
	}
	if d.Organizer != "" {
		score += weightOrganizer
	}
	if len(d.Speakers) > 0 {
		score += weightSpeakers
	}
	if d.RegistrationURL != "" {
		score += weightRegistration
	}
	if d.ImageURL != "" {
		score += weightImage
	}

	return score
}

// Storage tier names.
const (
	StorageTierPremium  = "premium"
	StorageTierStandard = "standard"
	StorageTierBasic    = "basic"
	StorageTierReject   = "reject"
)

// StorageTierFor 根据评分映射存储层级。
func (t Thresholds) StorageTierFor(score int) string {
	switch {
	case score >= t.Premium:
		return StorageTierPremium
	case score >= t.Standard:
		return StorageTierStandard
	case score >= t.Basic:
		return StorageTierBasic
	default:
		return StorageTierReject
	}
}

// Valid reports whether the thresholds are monotonic and in range.
func (t Thresholds) Valid() bool {
	return t.Premium > t.Standard &&
		t.Standard > t.Basic &&
		t.Basic > 0 &&
		t.Premium <= 100
}

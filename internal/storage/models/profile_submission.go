package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileSubmission 档案提交/快照表。
// SuggestionsJSON 存解析后的结构化点评，NULL表示该次提交点评生成失败。
type ProfileSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey" json:"submission_uuid"`
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_ps_submission_timestamp" json:"submission_timestamp"`
	OriginalFilename    string         `gorm:"type:varchar(255)" json:"original_filename"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)" json:"-"`
	RawTextMD5          string         `gorm:"type:char(32);index:idx_ps_raw_text_md5" json:"-"`
	RawText             string         `gorm:"type:text" json:"-"`
	CandidateName       string         `gorm:"type:varchar(255)" json:"name"`
	CandidateEmail      string         `gorm:"type:varchar(255)" json:"email"`
	ProfileURL          string         `gorm:"type:varchar(1024)" json:"profile_url"`
	OverallScore        int            `gorm:"type:int" json:"overall_score"`
	SuggestionsJSON     datatypes.JSON `gorm:"type:json" json:"suggestions"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)" json:"-"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime" json:"-"`
}

func (ProfileSubmission) TableName() string {
	return "profile_submissions"
}

package model

import "time"

// Result 一次模拟考试的成绩记录，所有用户共用一个序列
// swagger:model Result
type Result struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	TestName       string    `json:"testName"`
	TestType       string    `json:"testType"`
	Score          float64   `json:"score"` // 语义上0-100，不强制
	Date           string    `json:"date"`
	TimeTaken      string    `json:"timeTaken"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Stats 管理面板的聚合指标
type Stats struct {
	TotalResults int `json:"totalResults"`
	UniqueUsers  int `json:"uniqueUsers"`
	AverageScore int `json:"averageScore"` // 四舍五入
	PassRate     int `json:"passRate"`     // score>=70 的百分比，四舍五入
}

// TypeStats 按测试类型的细分统计
type TypeStats struct {
	Count        int `json:"count"`
	AverageScore int `json:"averageScore"`
}

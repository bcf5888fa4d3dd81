package model

// Question 单道选择题，固定4个选项
// swagger:model Question
type Question struct {
	ID            interface{} `json:"id"` // 上传方可能用数字也可能用字符串
	Question      string      `json:"question"`
	Options       []string    `json:"options"`
	CorrectAnswer int         `json:"correctAnswer"`
}

// QuestionSetInfo 一套已上传题库的概要信息
type QuestionSetInfo struct {
	TestType      string `json:"testType"`
	TestID        string `json:"testId"`
	QuestionCount int    `json:"questionCount"`
	Filename      string `json:"filename"`
}

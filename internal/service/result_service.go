package service

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/repository"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PassScore 及格线，通过率按 score >= PassScore 统计
const PassScore = 70

type ResultService struct {
	ResultRepo *repository.ResultRepository
}

func NewResultService(resultRepo *repository.ResultRepository) *ResultService {
	return &ResultService{ResultRepo: resultRepo}
}

// SubmitInput 提交成绩时由客户端提供的字段
type SubmitInput struct {
	UserID         string
	UserName       string
	UserEmail      string
	TestName       string
	TestType       string
	Score          float64
	Date           string
	TimeTaken      string
	TotalQuestions int
	CorrectAnswers int
}

// Submit 盖上服务端生成的ID和时间戳后追加到共享序列
func (s *ResultService) Submit(in SubmitInput) (*model.Result, error) {
	result := &model.Result{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		UserName:       in.UserName,
		UserEmail:      in.UserEmail,
		TestName:       in.TestName,
		TestType:       in.TestType,
		Score:          in.Score,
		Date:           in.Date,
		TimeTaken:      in.TimeTaken,
		TotalQuestions: in.TotalQuestions,
		CorrectAnswers: in.CorrectAnswers,
		CreatedAt:      time.Now(),
	}
	if result.Date == "" {
		result.Date = result.CreatedAt.Format("2006-01-02")
	}

	if err := s.ResultRepo.Append(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ByUser 按提交时间倒序返回某个用户的全部成绩
func (s *ResultService) ByUser(userID string) ([]model.Result, error) {
	results, err := s.ResultRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *ResultService) All() ([]model.Result, error) {
	return s.ResultRepo.All()
}

func (s *ResultService) Delete(id string) error {
	return s.ResultRepo.Delete(id)
}

// ComputeStats 对成绩序列的纯聚合
func ComputeStats(results []model.Result) model.Stats {
	stats := model.Stats{TotalResults: len(results)}
	if len(results) == 0 {
		return stats
	}

	users := make(map[string]bool)
	var sum float64
	passed := 0
	for _, r := range results {
		users[r.UserID] = true
		sum += r.Score
		if r.Score >= PassScore {
			passed++
		}
	}

	stats.UniqueUsers = len(users)
	stats.AverageScore = int(math.Round(sum / float64(len(results))))
	stats.PassRate = int(math.Round(float64(passed) / float64(len(results)) * 100))
	return stats
}

// ComputeTypeBreakdown 按测试类型的数量和平均分
func ComputeTypeBreakdown(results []model.Result) map[string]model.TypeStats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range results {
		sums[r.TestType] += r.Score
		counts[r.TestType]++
	}

	breakdown := make(map[string]model.TypeStats, len(counts))
	for t, n := range counts {
		breakdown[t] = model.TypeStats{
			Count:        n,
			AverageScore: int(math.Round(sums[t] / float64(n))),
		}
	}
	return breakdown
}

// csvColumns CSV导出的固定列序
var csvColumns = []string{
	"User Name", "Email", "Test Name", "Test Type", "Score",
	"Total Questions", "Correct Answers", "Date", "Time Taken",
}

// FormatResultsCSV 把成绩序列排成CSV文本。字符串字段用双引号包裹，
// 字段内嵌的双引号不做转义——这是线上已有消费方依赖的既有输出，
// 修改转义规则前需要先和报表侧对齐（行为由回归测试钉住）。
func FormatResultsCSV(results []model.Result) string {
	var b strings.Builder

	quoted := make([]string, len(csvColumns))
	for i, col := range csvColumns {
		quoted[i] = `"` + col + `"`
	}
	b.WriteString(strings.Join(quoted, ","))
	b.WriteString("\n")

	for _, r := range results {
		row := []string{
			`"` + r.UserName + `"`,
			`"` + r.UserEmail + `"`,
			`"` + r.TestName + `"`,
			`"` + r.TestType + `"`,
			strconv.FormatFloat(r.Score, 'f', -1, 64),
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.CorrectAnswers),
			`"` + r.Date + `"`,
			`"` + r.TimeTaken + `"`,
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// ExportCSV 生成带时间戳文件名的CSV导出
func (s *ResultService) ExportCSV() (filename, content string, err error) {
	results, err := s.ResultRepo.All()
	if err != nil {
		return "", "", err
	}
	filename = "results_" + time.Now().Format("20060102_150405") + ".csv"
	return filename, FormatResultsCSV(results), nil
}

package service

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/repository"
	"cbda_exam_backend/internal/util"
	"encoding/json"
	"fmt"
	"math/rand"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo}
}

// ValidateQuestions 声明式校验，返回所有违规项而不是只报第一个
func ValidateQuestions(questions []model.Question) []string {
	violations := []string{}
	for i, q := range questions {
		if q.ID == nil {
			violations = append(violations, fmt.Sprintf("question %d: missing id", i))
		}
		if q.Question == "" {
			violations = append(violations, fmt.Sprintf("question %d: missing question text", i))
		}
		if len(q.Options) != 4 {
			violations = append(violations, fmt.Sprintf("question %d: expected 4 options, got %d", i, len(q.Options)))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
			violations = append(violations, fmt.Sprintf("question %d: correctAnswer %d out of range [0,3]", i, q.CorrectAnswer))
		}
	}
	return violations
}

// Upload 解析上传内容并整体覆盖该 (testType, testId) 的题库。
// 校验失败不落盘，之前存的文件保持原样。
func (s *QuestionService) Upload(testType, testID string, raw []byte) (int, error) {
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return 0, fmt.Errorf("%w: body must be a JSON array of questions", util.ErrInvalidQuestionFile)
	}

	if violations := ValidateQuestions(questions); len(violations) > 0 {
		return 0, fmt.Errorf("%w: %v", util.ErrInvalidQuestionFile, violations)
	}

	if err := s.QuestionRepo.Save(testType, testID, questions); err != nil {
		return 0, err
	}
	return len(questions), nil
}

// Fetch 返回乱序后的题目。seed 显式传入：生产每次请求用新种子，
// 测试用固定种子断言确定性。乱序是为了防止背答案位置，不是安全手段。
func (s *QuestionService) Fetch(testType, testID string, seed int64) ([]model.Question, error) {
	questions, err := s.QuestionRepo.Find(testType, testID)
	if err != nil {
		return nil, err
	}
	return ShuffleQuestions(questions, seed), nil
}

// ShuffleQuestions 基于给定种子返回打乱顺序的副本，不修改入参
func ShuffleQuestions(questions []model.Question, seed int64) []model.Question {
	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)

	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Available 列出所有已上传的套题
func (s *QuestionService) Available() ([]model.QuestionSetInfo, error) {
	return s.QuestionRepo.ListSets()
}

package service

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/repository"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/internal/util"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newResultService(t *testing.T) (*ResultService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_results.json")
	repo := repository.NewResultRepository(store.NewFileStore(), path)
	return NewResultService(repo), path
}

func TestComputeStats(t *testing.T) {
	results := []model.Result{
		{UserID: "u1", Score: 80},
		{UserID: "u2", Score: 60},
		{UserID: "u1", Score: 100},
	}

	stats := ComputeStats(results)
	if stats.TotalResults != 3 {
		t.Fatalf("totalResults = %d", stats.TotalResults)
	}
	if stats.UniqueUsers != 2 {
		t.Fatalf("uniqueUsers = %d", stats.UniqueUsers)
	}
	if stats.AverageScore != 80 {
		t.Fatalf("averageScore = %d, want 80", stats.AverageScore)
	}
	// 2/3及格，round(66.67) = 67
	if stats.PassRate != 67 {
		t.Fatalf("passRate = %d, want 67", stats.PassRate)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalResults != 0 || stats.UniqueUsers != 0 || stats.AverageScore != 0 || stats.PassRate != 0 {
		t.Fatalf("empty stats should be all zero: %+v", stats)
	}
}

func TestComputeTypeBreakdown(t *testing.T) {
	results := []model.Result{
		{TestType: "cbda", Score: 80},
		{TestType: "cbda", Score: 90},
		{TestType: "mock", Score: 50},
	}

	breakdown := ComputeTypeBreakdown(results)
	if breakdown["cbda"].Count != 2 || breakdown["cbda"].AverageScore != 85 {
		t.Fatalf("cbda breakdown: %+v", breakdown["cbda"])
	}
	if breakdown["mock"].Count != 1 || breakdown["mock"].AverageScore != 50 {
		t.Fatalf("mock breakdown: %+v", breakdown["mock"])
	}
}

func TestSubmitStampsRecord(t *testing.T) {
	svc, _ := newResultService(t)

	result, err := svc.Submit(SubmitInput{
		UserID:   "u1",
		UserName: "Ana",
		TestName: "CBDA Mock 1",
		TestType: "cbda",
		Score:    85,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.ID == "" {
		t.Fatal("expected generated id")
	}
	if result.CreatedAt.IsZero() {
		t.Fatal("expected server timestamp")
	}
	if result.Date == "" {
		t.Fatal("expected defaulted date")
	}

	all, err := svc.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != result.ID {
		t.Fatalf("stored sequence mismatch: %+v", all)
	}
}

func TestByUserSortedNewestFirst(t *testing.T) {
	svc, _ := newResultService(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, score := range []float64{50, 70, 90} {
		r := &model.Result{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Score:     score,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := svc.ResultRepo.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	// 其他用户的记录不能混进来
	if err := svc.ResultRepo.Append(&model.Result{ID: "x", UserID: "u2", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}

	results, err := svc.ByUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].CreatedAt.After(results[i-1].CreatedAt) {
			t.Fatalf("results not sorted newest first: %+v", results)
		}
	}
}

// 删除不存在的ID要返回 NotFound 且文件逐字节不变
func TestDeleteUnknownResultLeavesFileUnchanged(t *testing.T) {
	svc, path := newResultService(t)

	if _, err := svc.Submit(SubmitInput{UserName: "Ana", TestName: "t", Score: 50}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete("no-such-id"); !errors.Is(err, util.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("failed delete modified the results file")
	}
}

func TestDeleteExistingResult(t *testing.T) {
	svc, _ := newResultService(t)

	r, err := svc.Submit(SubmitInput{UserName: "Ana", TestName: "t", Score: 50})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	all, err := svc.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty sequence after delete, got %d", len(all))
	}
}

// 钉住已知的未转义输出：字段内嵌双引号原样写出。
// 改成RFC 4180转义前必须先跟报表消费方对齐。
func TestFormatResultsCSVPinsUnescapedQuotes(t *testing.T) {
	results := []model.Result{{
		UserName:       `Bob "The Boss" Smith`,
		UserEmail:      "bob@example.com",
		TestName:       "CBDA Mock 1",
		TestType:       "cbda",
		Score:          88,
		TotalQuestions: 50,
		CorrectAnswers: 44,
		Date:           "2026-08-25",
		TimeTaken:      "41:20",
	}}

	out := FormatResultsCSV(results)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != `"User Name","Email","Test Name","Test Type","Score","Total Questions","Correct Answers","Date","Time Taken"` {
		t.Fatalf("header changed: %s", lines[0])
	}
	want := `"Bob "The Boss" Smith","bob@example.com","CBDA Mock 1","cbda",88,50,44,"2026-08-25","41:20"`
	if lines[1] != want {
		t.Fatalf("row output changed:\n got: %s\nwant: %s", lines[1], want)
	}
}

func TestExportCSVFilename(t *testing.T) {
	svc, _ := newResultService(t)
	filename, content, err := svc.ExportCSV()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filename, "results_") || !strings.HasSuffix(filename, ".csv") {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !strings.HasPrefix(content, `"User Name"`) {
		t.Fatalf("missing header: %q", content)
	}
}

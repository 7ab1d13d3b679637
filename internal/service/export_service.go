package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
)

// ExportService 导出业务接口
type ExportService interface {
	// ExportSchoolEvidence 导出学校全部材料的审核记录 Excel，按轮次分工作表
	ExportSchoolEvidence(ctx context.Context, schoolID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 表头：与审核面板列对齐
var exportHeaders = []string{"材料ID", "阶段", "标题", "状态", "提交时间", "审核时间", "审核意见"}

// ────────────────────── ExportSchoolEvidence ──────────────────────

func (s *exportService) ExportSchoolEvidence(ctx context.Context, schoolID string) (*bytes.Buffer, string, error) {
	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, "", err
	}

	evidence, err := s.repo.Evidence.ListBySchool(ctx, schoolID)
	if err != nil {
		s.logger.Error("查询学校材料失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, "", err
	}

	// 按轮次分组；ListBySchool 已按提交时间升序
	byRound := make(map[int][]model.Evidence)
	maxRound := school.CurrentRound
	for i := range evidence {
		r := evidence[i].RoundNumber
		byRound[r] = append(byRound[r], evidence[i])
		if r > maxRound {
			maxRound = r
		}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("关闭 Excel 文件失败", zap.Error(err))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("创建表头样式失败: %w", err)
	}

	for round := 1; round <= maxRound; round++ {
		sheet := fmt.Sprintf("第%d轮", round)
		if round == 1 {
			// 重命名默认工作表
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, "", err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, "", err
			}
		}

		if err := s.writeRoundSheet(f, sheet, headerStyle, byRound[round]); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("%s-材料审核记录.xlsx", school.Name)
	return buf, filename, nil
}

// writeRoundSheet 写入单轮工作表：表头 + 按阶段顺序排列的材料行
func (s *exportService) writeRoundSheet(f *excelize.File, sheet string, headerStyle int, rows []model.Evidence) error {
	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "G", 20); err != nil {
		return err
	}

	// 阶段顺序固定：inspire → investigate → act
	rowIdx := 2
	for _, stage := range []string{model.StageInspire, model.StageInvestigate, model.StageAct} {
		for i := range rows {
			ev := &rows[i]
			if ev.Stage != stage {
				continue
			}
			values := []interface{}{
				ev.EvidenceID,
				ev.Stage,
				ev.Title,
				ev.Status,
				fmtTime(ev.SubmittedAt),
				fmtTimePtr(ev.ReviewedAt),
				ev.ReviewNotes,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			rowIdx++
		}
	}
	return nil
}

package service

import (
	"time"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
)

// 模型 → DTO 转换辅助，供各 Service 共用

const timeLayout = "2006-01-02T15:04:05Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtTime(*t)
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toSchoolResponse(school *model.School) *dto.SchoolResponse {
	return &dto.SchoolResponse{
		ID:                   school.SchoolID,
		Name:                 school.Name,
		Region:               school.Region,
		ContactEmail:         school.ContactEmail,
		CurrentStage:         school.CurrentStage,
		InspireCompleted:     school.InspireCompleted,
		InvestigateCompleted: school.InvestigateCompleted,
		ActCompleted:         school.ActCompleted,
		AwardCompleted:       school.AwardCompleted,
		AuditQuizCompleted:   school.AuditQuizCompleted,
		CurrentRound:         school.CurrentRound,
		RoundsCompleted:      school.RoundsCompleted,
		ProgressPercentage:   school.ProgressPercentage,
		CreatedAt:            fmtTime(school.CreatedAt),
		UpdatedAt:            fmtTime(school.UpdatedAt),
	}
}

func toEvidenceResponse(evidence *model.Evidence) *dto.EvidenceResponse {
	return &dto.EvidenceResponse{
		ID:          evidence.EvidenceID,
		SchoolID:    evidence.SchoolID,
		Stage:       evidence.Stage,
		RoundNumber: evidence.RoundNumber,
		Title:       evidence.Title,
		Description: evidence.Description,
		FileName:    evidence.FileName,
		FileURL:     evidence.FileURL,
		FileSize:    evidence.FileSize,
		ContentType: evidence.ContentType,
		Status:      evidence.Status,
		SubmittedAt: fmtTime(evidence.SubmittedAt),
		ReviewedAt:  fmtTimePtr(evidence.ReviewedAt),
		ReviewedBy:  strPtrValue(evidence.ReviewedBy),
		ReviewNotes: evidence.ReviewNotes,
	}
}

func toAuditResponse(audit *model.AuditResponse) *dto.AuditDetailResponse {
	return &dto.AuditDetailResponse{
		ID:          audit.AuditID,
		SchoolID:    audit.SchoolID,
		Answers:     audit.Answers,
		Status:      audit.Status,
		SubmittedAt: fmtTimePtr(audit.SubmittedAt),
		ReviewedAt:  fmtTimePtr(audit.ReviewedAt),
		ReviewedBy:  strPtrValue(audit.ReviewedBy),
		ReviewNotes: audit.ReviewNotes,
	}
}

func toNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:          n.NotificationID,
		Type:        n.Type,
		Title:       n.Title,
		Content:     n.Content,
		IsRead:      n.IsRead,
		RelatedType: strPtrValue(n.RelatedType),
		RelatedID:   strPtrValue(n.RelatedID),
		CreatedAt:   fmtTime(n.CreatedAt),
	}
}

func toCertificateResponse(cert *model.Certificate) *dto.CertificateResponse {
	return &dto.CertificateResponse{
		ID:                  cert.CertificateID,
		SchoolID:            cert.SchoolID,
		Stage:               cert.Stage,
		CertificateNumber:   cert.CertificateNumber,
		InspireApproved:     cert.InspireApproved,
		InvestigateApproved: cert.InvestigateApproved,
		ActApproved:         cert.ActApproved,
		IssuedAt:            fmtTime(cert.IssuedAt),
		IsActive:            cert.IsActive,
	}
}

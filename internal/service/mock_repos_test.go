package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
	pkgerrors "eco-award/backend/pkg/errors"
)

// 内存版 Repository 实现，供 Service 单元测试使用。
// 语义对齐 GORM 实现：未命中返回 gorm.ErrRecordNotFound，
// 学校更新带版本号 CAS。

var idSeq int

func nextID(prefix string) string {
	idSeq++
	return fmt.Sprintf("%s-%04d", prefix, idSeq)
}

// ── SchoolRepository ──

type mockSchoolRepo struct {
	mu      sync.Mutex
	schools map[string]*model.School
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{schools: make(map[string]*model.School)}
}

func (m *mockSchoolRepo) Create(_ context.Context, school *model.School) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if school.SchoolID == "" {
		school.SchoolID = nextID("school")
	}
	if school.Version == 0 {
		school.Version = 1
	}
	school.CreatedAt = time.Now()
	school.UpdatedAt = time.Now()
	cp := *school
	m.schools[school.SchoolID] = &cp
	return nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	school, ok := m.schools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *school
	return &cp, nil
}

func (m *mockSchoolRepo) List(_ context.Context, filters *repository.SchoolListFilters, offset, limit int) ([]model.School, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.School
	for _, s := range m.schools {
		if filters != nil {
			if filters.Region != "" && s.Region != filters.Region {
				continue
			}
			if filters.Stage != "" && s.CurrentStage != filters.Stage {
				continue
			}
		}
		all = append(all, *s)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSchoolRepo) UpdateWithVersion(_ context.Context, school *model.School) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.schools[school.SchoolID]
	if !ok || stored.Version != school.Version {
		return pkgerrors.ErrOptimisticLock
	}
	school.Version++
	school.UpdatedAt = time.Now()
	cp := *school
	m.schools[school.SchoolID] = &cp
	return nil
}

// ── EvidenceRepository ──

type mockEvidenceRepo struct {
	mu       sync.Mutex
	evidence map[string]*model.Evidence
}

func newMockEvidenceRepo() *mockEvidenceRepo {
	return &mockEvidenceRepo{evidence: make(map[string]*model.Evidence)}
}

func (m *mockEvidenceRepo) Create(_ context.Context, ev *model.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.EvidenceID == "" {
		ev.EvidenceID = nextID("evidence")
	}
	ev.CreatedAt = time.Now()
	cp := *ev
	m.evidence[ev.EvidenceID] = &cp
	return nil
}

func (m *mockEvidenceRepo) GetByID(_ context.Context, id string) (*model.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.evidence[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *mockEvidenceRepo) ListBySchool(_ context.Context, schoolID string) ([]model.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Evidence
	for _, ev := range m.evidence {
		if ev.SchoolID == schoolID {
			list = append(list, *ev)
		}
	}
	return list, nil
}

func (m *mockEvidenceRepo) ListBySchoolFiltered(_ context.Context, schoolID string, filters *repository.EvidenceListFilters) ([]model.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Evidence
	for _, ev := range m.evidence {
		if ev.SchoolID != schoolID {
			continue
		}
		if filters != nil {
			if filters.Round != nil && ev.RoundNumber != *filters.Round {
				continue
			}
			if filters.Stage != "" && ev.Stage != filters.Stage {
				continue
			}
			if filters.Status != "" && ev.Status != filters.Status {
				continue
			}
		}
		list = append(list, *ev)
	}
	return list, nil
}

func (m *mockEvidenceRepo) Update(_ context.Context, ev *model.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evidence[ev.EvidenceID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ev
	m.evidence[ev.EvidenceID] = &cp
	return nil
}

// ── AuditRepository ──

type mockAuditRepo struct {
	mu     sync.Mutex
	audits map[string]*model.AuditResponse
	order  []string // 创建顺序，GetLatest 取最后一个
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{audits: make(map[string]*model.AuditResponse)}
}

func (m *mockAuditRepo) Create(_ context.Context, audit *model.AuditResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if audit.AuditID == "" {
		audit.AuditID = nextID("audit")
	}
	audit.CreatedAt = time.Now()
	cp := *audit
	m.audits[audit.AuditID] = &cp
	m.order = append(m.order, audit.AuditID)
	return nil
}

func (m *mockAuditRepo) GetByID(_ context.Context, id string) (*model.AuditResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	audit, ok := m.audits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *audit
	return &cp, nil
}

func (m *mockAuditRepo) GetLatestBySchool(_ context.Context, schoolID string) (*model.AuditResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		audit := m.audits[m.order[i]]
		if audit.SchoolID == schoolID {
			cp := *audit
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuditRepo) GetLatestApproved(_ context.Context, schoolID string) (*model.AuditResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		audit := m.audits[m.order[i]]
		if audit.SchoolID == schoolID && audit.Status == model.AuditStatusApproved {
			cp := *audit
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuditRepo) Update(_ context.Context, audit *model.AuditResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.audits[audit.AuditID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *audit
	m.audits[audit.AuditID] = &cp
	return nil
}

// ── CertificateRepository ──

type mockCertificateRepo struct {
	mu    sync.Mutex
	certs []*model.Certificate
}

func newMockCertificateRepo() *mockCertificateRepo {
	return &mockCertificateRepo{}
}

func (m *mockCertificateRepo) Create(_ context.Context, cert *model.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 模拟 (school_id, stage) 唯一约束，错误形态与 Postgres 驱动一致
	for _, c := range m.certs {
		if c.SchoolID == cert.SchoolID && c.Stage == cert.Stage {
			return &pgconn.PgError{
				Code:           "23505",
				Message:        `duplicate key value violates unique constraint "uq_certificates_school_stage"`,
				ConstraintName: "uq_certificates_school_stage",
			}
		}
	}
	if cert.CertificateID == "" {
		cert.CertificateID = nextID("cert")
	}
	cp := *cert
	m.certs = append(m.certs, &cp)
	return nil
}

func (m *mockCertificateRepo) Exists(_ context.Context, schoolID, stage string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if c.SchoolID == schoolID && c.Stage == stage {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCertificateRepo) ListBySchool(_ context.Context, schoolID string) ([]model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Certificate
	for _, c := range m.certs {
		if c.SchoolID == schoolID {
			list = append(list, *c)
		}
	}
	return list, nil
}

// ── UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListBySchool(_ context.Context, schoolID string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.User
	for _, user := range m.users {
		if user.SchoolID != nil && *user.SchoolID == schoolID {
			list = append(list, *user)
		}
	}
	return list, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.NotificationID == "" {
		n.NotificationID = nextID("notif")
	}
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			list = append(list, *n)
		}
	}
	total := int64(len(list))
	if offset >= len(list) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return nil
}

// ── 聚合 ──

func newMockRepository() *repository.Repository {
	return &repository.Repository{
		User:         newMockUserRepo(),
		School:       newMockSchoolRepo(),
		Evidence:     newMockEvidenceRepo(),
		Audit:        newMockAuditRepo(),
		Certificate:  newMockCertificateRepo(),
		Notification: newMockNotificationRepo(),
	}
}

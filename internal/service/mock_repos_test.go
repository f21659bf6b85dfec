package service

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
	"radstream/backend/internal/repository"
)

// ── Mock StudyRepository ──

type mockStudyRepo struct {
	studies map[string]*model.Study
	// listErr / countErr 注入查询失败
	listErr  error
	countErr error
}

func newMockStudyRepo() *mockStudyRepo {
	return &mockStudyRepo{studies: make(map[string]*model.Study)}
}

func (m *mockStudyRepo) Create(_ context.Context, study *model.Study) error {
	if study.StudyID == "" {
		study.StudyID = "study-" + study.StudyInstanceUID
	}
	m.studies[study.StudyID] = study
	return nil
}

func (m *mockStudyRepo) GetByID(_ context.Context, id string) (*model.Study, error) {
	if s, ok := m.studies[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyRepo) GetByInstanceUID(_ context.Context, uid string) (*model.Study, error) {
	for _, s := range m.studies {
		if s.StudyInstanceUID == uid {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyRepo) Update(_ context.Context, study *model.Study) error {
	m.studies[study.StudyID] = study
	return nil
}

func (m *mockStudyRepo) ListFiltered(_ context.Context, filters *dto.StreamFilters) ([]model.Study, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var result []model.Study
	for _, s := range m.studies {
		if filters.Modality != "" && s.Modality != filters.Modality {
			continue
		}
		if filters.Location != "" && s.Location != filters.Location {
			continue
		}
		category := model.CategoryOf(s.WorkflowStatus)
		switch filters.Category {
		case dto.CategoryPending, dto.CategoryInProgress, dto.CategoryCompleted:
			if category != filters.Category {
				continue
			}
		default:
			if !filters.IncludeCompleted && category == model.CategoryCompleted {
				continue
			}
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))
	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			result = nil
		} else {
			result = result[filters.Offset:]
		}
	}
	if filters.MaxStudies > 0 && len(result) > filters.MaxStudies {
		result = result[:filters.MaxStudies]
	}
	return result, total, nil
}

func (m *mockStudyRepo) CountByCategory(_ context.Context) (map[string]int64, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	counts := map[string]int64{
		model.CategoryPending:    0,
		model.CategoryInProgress: 0,
		model.CategoryCompleted:  0,
	}
	for _, s := range m.studies {
		counts[model.CategoryOf(s.WorkflowStatus)]++
	}
	return counts, nil
}

// ── Mock PatientRepository ──

type mockPatientRepo struct {
	patients map[string]*model.Patient
	// batchErr 注入批量查询失败
	batchErr error
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[string]*model.Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *model.Patient) error {
	m.patients[p.PatientID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id string) (*model.Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatientRepo) ListByIDs(_ context.Context, ids []string) ([]model.Patient, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	var result []model.Patient
	for _, id := range ids {
		if p, ok := m.patients[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Mock DoctorRepository ──

type mockDoctorRepo struct {
	doctors map[string]*model.Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[string]*model.Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	m.doctors[d.DoctorID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id string) (*model.Doctor, error) {
	if d, ok := m.doctors[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDoctorRepo) ListByIDs(_ context.Context, ids []string) ([]model.Doctor, error) {
	var result []model.Doctor
	for _, id := range ids {
		if d, ok := m.doctors[id]; ok {
			result = append(result, *d)
		}
	}
	return result, nil
}

// ── Mock LabRepository ──

type mockLabRepo struct {
	labs map[string]*model.Lab
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{labs: make(map[string]*model.Lab)}
}

func (m *mockLabRepo) Create(_ context.Context, l *model.Lab) error {
	m.labs[l.LabID] = l
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id string) (*model.Lab, error) {
	if l, ok := m.labs[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabRepo) ListByIDs(_ context.Context, ids []string) ([]model.Lab, error) {
	var result []model.Lab
	for _, id := range ids {
		if l, ok := m.labs[id]; ok {
			result = append(result, *l)
		}
	}
	return result, nil
}

// ── 组装测试用 Repository ──

func newMockRepository() (*repository.Repository, *mockStudyRepo, *mockPatientRepo, *mockDoctorRepo, *mockLabRepo) {
	studies := newMockStudyRepo()
	patients := newMockPatientRepo()
	doctors := newMockDoctorRepo()
	labs := newMockLabRepo()
	repo := &repository.Repository{
		Study:   studies,
		Patient: patients,
		Doctor:  doctors,
		Lab:     labs,
	}
	return repo, studies, patients, doctors, labs
}

var errMockDB = errors.New("mock db failure")

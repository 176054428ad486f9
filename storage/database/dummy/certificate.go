package dummydb

import (
	"context"
	"sort"

	"github.com/gurujilabs/guruji/core/certificate"
)

type certificateRepository struct {
	db *certificateTable
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *DB) certificate.Repository {
	return &certificateRepository{db: db.certificate}
}

func (repo *certificateRepository) CreateCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[cert.ID] = &cert
	return cert, nil
}

func (repo *certificateRepository) GetCertificateByCode(ctx context.Context, code string) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cert := range repo.db.table {
		if cert.Code == code {
			return *cert, nil
		}
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) GetCertificateForStudentAndCourse(ctx context.Context, studentID, courseID string) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cert := range repo.db.table {
		if cert.StudentID == studentID && cert.CourseID == courseID {
			return *cert, nil
		}
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) QueryCertificatesByStudent(ctx context.Context, studentID string) ([]certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var certs []certificate.Certificate
	for _, cert := range repo.db.table {
		if cert.StudentID == studentID {
			certs = append(certs, *cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].IssuedAt.After(certs[j].IssuedAt) })
	return certs, nil
}

func (repo *certificateRepository) InvalidateCertificate(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cert, ok := repo.db.table[id]
	if !ok {
		return certificate.ErrNotFound
	}
	cert.IsValid = false
	return nil
}

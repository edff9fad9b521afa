package resumes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{"id", "user_id", "title", "content", "template_config", "pdf_url", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoGetByIDScopesToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("r1", "u1").
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow(
			"r1", "u1", "CV",
			[]byte(`{"personalInfo":{"fullName":"Ana","headline":"","email":"","phone":"","location":""},"skills":[{"id":"s1","name":"Go","level":"Expert"}]}`),
			[]byte(`{"layout":"classic","fontFamily":"Lora","photoPosition":"right","primaryColor":"#111111","texture":"lines"}`),
			"https://cdn.example.com/renders/a.pdf",
			created, created,
		))

	resume, err := repo.GetByID(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if resume.Content.PersonalInfo.FullName != "Ana" || len(resume.Content.Skills) != 1 {
		t.Fatalf("content not decoded: %+v", resume.Content)
	}
	if resume.Content.Experience == nil {
		t.Fatalf("missing arrays must decode as empty")
	}
	if resume.TemplateConfig == nil || resume.TemplateConfig.Layout != "classic" {
		t.Fatalf("template config not decoded: %+v", resume.TemplateConfig)
	}
	if resume.PDFURL != "https://cdn.example.com/renders/a.pdf" {
		t.Fatalf("unexpected pdf url %s", resume.PDFURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNullColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("r1", "u1").
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow("r1", "u1", "CV", []byte(`{}`), nil, nil, now, now))

	resume, err := repo.GetByID(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if resume.TemplateConfig != nil || resume.PDFURL != "" {
		t.Fatalf("expected empty optional fields, got %+v", resume)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("r1", "intruder").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "intruder", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSetPDFURLSingleUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE resumes SET pdf_url = \\$1, updated_at = \\$2 WHERE id = \\$3 AND user_id = \\$4").
		WithArgs("https://cdn.example.com/x.pdf", at, "r1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetPDFURL(context.Background(), "u1", "r1", "https://cdn.example.com/x.pdf", at); err != nil {
		t.Fatalf("SetPDFURL: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoWritesToForeignRowAreNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE resumes SET pdf_url").
		WithArgs("https://cdn.example.com/x.pdf", at, "r1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("r1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetPDFURL(context.Background(), "intruder", "r1", "https://cdn.example.com/x.pdf", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "intruder", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCreateAndUpdateContent(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs("r1", "u1", "CV", sqlmock.AnyArg(), nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE resumes SET content = \\$1, updated_at = \\$2").
		WithArgs(sqlmock.AnyArg(), now, "r1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), Resume{
		ID: "r1", UserID: "u1", Title: "CV", Content: InitialContent(),
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateContent(context.Background(), "u1", "r1", Content{}, now); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM resumes WHERE user_id = \\$1 ORDER BY updated_at DESC").
		WithArgs("u1", 20, 0).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("r2", "u1", "B", []byte(`{}`), nil, nil, now, now).
			AddRow("r1", "u1", "A", []byte(`{}`), nil, "https://x/a.pdf", now, now.Add(-time.Hour)))

	list, err := repo.ListByUser(context.Background(), "u1", 0, -5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != "r2" || list[1].PDFURL != "https://x/a.pdf" {
		t.Fatalf("unexpected list %+v", list)
	}
}

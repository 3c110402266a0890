package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/testutil"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupSQLite(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	return db
}

func strPtr(s string) *string {
	return &s
}

func seedClient(t *testing.T, db *gorm.DB, id, name string, email *string) {
	t.Helper()
	if err := db.Create(&clientRecord{ID: id, Name: name, Email: email}).Error; err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
}

func seedProject(t *testing.T, db *gorm.DB, p projectRecord) {
	t.Helper()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
}

func TestProjectRepository_ListByStatuses(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	seedClient(t, db, "c1", "ACME", strPtr("billing@acme.test"))
	seedClient(t, db, "c2", "Globex", nil)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedProject(t, db, projectRecord{ID: "p-late", Name: "Late", DueDate: strPtr("2025-01-20"), Status: "pending", ClientID: strPtr("c1"), CreatedAt: base})
	seedProject(t, db, projectRecord{ID: "p-early", Name: "Early", DueDate: strPtr("2025-01-12"), Status: "in_progress", ClientID: strPtr("c2"), CreatedAt: base.Add(time.Hour)})
	seedProject(t, db, projectRecord{ID: "p-tie-2", Name: "Tie second", DueDate: strPtr("2025-01-15"), Status: "pending", ClientID: strPtr("c1"), CreatedAt: base.Add(2 * time.Hour)})
	seedProject(t, db, projectRecord{ID: "p-tie-1", Name: "Tie first", DueDate: strPtr("2025-01-15"), Status: "pending", ClientID: strPtr("c1"), CreatedAt: base.Add(time.Minute)})
	seedProject(t, db, projectRecord{ID: "p-done", Name: "Done", DueDate: strPtr("2025-01-11"), Status: "completed", ClientID: strPtr("c1"), CreatedAt: base})
	seedProject(t, db, projectRecord{ID: "p-bad", Name: "Bad date", DueDate: strPtr("not-a-date"), Status: "review", CreatedAt: base})

	repo := NewProjectRepository(db)

	projects, err := repo.ListByStatuses(ctx, domain.DefaultAlertStatuses)
	if err != nil {
		t.Fatalf("ListByStatuses() error = %v", err)
	}

	wantOrder := []string{"p-early", "p-tie-1", "p-tie-2", "p-late"}
	if len(projects) != len(wantOrder) {
		t.Fatalf("got %d projects, want %d: %+v", len(projects), len(wantOrder), projects)
	}
	for i, id := range wantOrder {
		if projects[i].ID != id {
			t.Errorf("projects[%d].ID = %q, want %q", i, projects[i].ID, id)
		}
	}

	early := projects[0]
	if early.DueDate != "2025-01-12" {
		t.Errorf("DueDate = %q, want raw stored date", early.DueDate)
	}
	if early.ClientName != "Globex" || early.ClientEmail != "" {
		t.Errorf("client = %q/%q, want Globex without email", early.ClientName, early.ClientEmail)
	}
	if early.Status != domain.ProjectStatusInProgress {
		t.Errorf("Status = %q", early.Status)
	}
	if projects[3].ClientEmail != "billing@acme.test" {
		t.Errorf("ClientEmail = %q", projects[3].ClientEmail)
	}
}

func TestProjectRepository_ListByStatuses_RawInvalidDate(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	seedProject(t, db, projectRecord{ID: "p-bad", Name: "Bad date", DueDate: strPtr("not-a-date"), Status: "pending"})
	seedProject(t, db, projectRecord{ID: "p-null", Name: "No date", Status: "pending"})

	projects, err := NewProjectRepository(db).ListByStatuses(ctx, []domain.ProjectStatus{domain.ProjectStatusPending})
	if err != nil {
		t.Fatalf("ListByStatuses() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}

	got := map[string]string{}
	for _, p := range projects {
		got[p.ID] = p.DueDate
	}
	if got["p-bad"] != "not-a-date" {
		t.Errorf("p-bad DueDate = %q, want raw value", got["p-bad"])
	}
	if got["p-null"] != "" {
		t.Errorf("p-null DueDate = %q, want empty", got["p-null"])
	}
}

func TestProjectRepository_ListByStatuses_NoStatuses(t *testing.T) {
	db := setupDB(t)

	projects, err := NewProjectRepository(db).ListByStatuses(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListByStatuses() error = %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("got %d projects, want none", len(projects))
	}
}

func TestAlertRepository_RecordAndHasRecent(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	repo := &alertRepository{db: db, now: func() time.Time { return now }}

	has, err := repo.HasRecent(ctx, "p1", domain.AlertTypeDeadlineApproaching, 24*time.Hour)
	if err != nil {
		t.Fatalf("HasRecent() error = %v", err)
	}
	if has {
		t.Fatal("HasRecent() = true before any alert was recorded")
	}

	alert := domain.NewAlert("p1", domain.AlertTypeDeadlineApproaching, `El proyecto "Web" vence en 2 días`, now.Add(-2*time.Hour))
	if err := repo.Record(ctx, alert); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	tests := []struct {
		name      string
		projectID string
		alertType domain.AlertType
		window    time.Duration
		want      bool
	}{
		{name: "same project and type", projectID: "p1", alertType: domain.AlertTypeDeadlineApproaching, window: 24 * time.Hour, want: true},
		{name: "different type", projectID: "p1", alertType: domain.AlertTypeOverdue, window: 24 * time.Hour, want: false},
		{name: "different project", projectID: "p2", alertType: domain.AlertTypeDeadlineApproaching, window: 24 * time.Hour, want: false},
		{name: "outside window", projectID: "p1", alertType: domain.AlertTypeDeadlineApproaching, window: time.Hour, want: false},
		{name: "zero window uses default", projectID: "p1", alertType: domain.AlertTypeDeadlineApproaching, window: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasRecent(ctx, tt.projectID, tt.alertType, tt.window)
			if err != nil {
				t.Fatalf("HasRecent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasRecent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertRepository_Record_Invalid(t *testing.T) {
	repo := NewAlertRepository(setupDB(t))

	if err := repo.Record(context.Background(), nil); !errors.Is(err, ErrInvalidAlertData) {
		t.Errorf("Record(nil) error = %v, want ErrInvalidAlertData", err)
	}
	if err := repo.Record(context.Background(), &domain.Alert{ID: "a1"}); !errors.Is(err, ErrInvalidAlertData) {
		t.Errorf("Record(no project) error = %v, want ErrInvalidAlertData", err)
	}
}

func TestAlertRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewAlertRepository(db)

	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		alert := domain.NewAlert(id, domain.AlertTypeOverdue, "msg "+id, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Record(ctx, alert); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	alerts, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].ProjectID != "p3" || alerts[1].ProjectID != "p2" {
		t.Errorf("order = %s, %s; want newest first", alerts[0].ProjectID, alerts[1].ProjectID)
	}
	if alerts[0].IsRead {
		t.Error("IsRead = true, want false")
	}
}

func TestOpen_SQLiteWithAutoMigrate(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{
		Driver:      config.DatabaseDriverSQLite,
		URL:         filepath.Join(t.TempDir(), "alerts.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer Close(db)

	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if !db.Migrator().HasTable("alerts") {
		t.Error("alerts table was not created")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "mysql", URL: "x"})
	if !errors.Is(err, config.ErrUnsupportedDatabaseDriver) {
		t.Fatalf("Open() error = %v, want ErrUnsupportedDatabaseDriver", err)
	}
}

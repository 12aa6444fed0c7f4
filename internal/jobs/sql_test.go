package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockSource(t *testing.T, cfg SQLConfig) (*SQLSource, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("opening gorm: %v", err)
	}

	source, err := NewSQLSource(db, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("creating source: %v", err)
	}

	return source, mock
}

func TestSQLSourceAllDecodesRows(t *testing.T) {
	source, mock := newMockSource(t, SQLConfig{Table: "job_titles"})

	mock.ExpectQuery("SELECT .+ FROM `job_titles`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Backend Engineer").
			AddRow("2", []byte("Graphic Designer")).
			AddRow(int64(3), "   "))

	titles, err := source.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Title{{ID: 1, Title: "Backend Engineer"}, {ID: 2, Title: "Graphic Designer"}}
	if len(titles) != len(expected) {
		t.Fatalf("expected %d titles, got %d: %+v", len(expected), len(titles), titles)
	}

	for i := range expected {
		if titles[i] != expected[i] {
			t.Fatalf("title %d: expected %+v, got %+v", i, expected[i], titles[i])
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLSourceAllCustomColumns(t *testing.T) {
	source, mock := newMockSource(t, SQLConfig{Table: "roles", IDColumn: "role_id", TitleColumn: "label"})

	mock.ExpectQuery("SELECT .*role_id.*label.* FROM `roles`").
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "label"}).AddRow(int64(7), "SRE"))

	titles, err := source.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(titles) != 1 || titles[0] != (Title{ID: 7, Title: "SRE"}) {
		t.Fatalf("unexpected titles: %+v", titles)
	}
}

func TestSQLSourceAllEmptyTable(t *testing.T) {
	source, mock := newMockSource(t, SQLConfig{Table: "job_titles"})

	mock.ExpectQuery("SELECT .+ FROM `job_titles`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	titles, err := source.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if titles == nil || len(titles) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", titles)
	}
}

func TestSQLSourceAllQueryError(t *testing.T) {
	source, mock := newMockSource(t, SQLConfig{Table: "job_titles"})

	queryErr := errors.New("connection refused")
	mock.ExpectQuery("SELECT .+ FROM `job_titles`").WillReturnError(queryErr)

	_, err := source.All(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	if !errors.Is(err, queryErr) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestSQLSourceAllNullID(t *testing.T) {
	source, mock := newMockSource(t, SQLConfig{Table: "job_titles"})

	mock.ExpectQuery("SELECT .+ FROM `job_titles`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(nil, "Orphan"))

	if _, err := source.All(context.Background()); err == nil {
		t.Fatal("expected error for null id")
	}
}

func TestSQLConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     SQLConfig
		wantErr string
	}{
		{
			name: "complete",
			cfg:  SQLConfig{Host: "db", User: "app", Name: "jobs", Table: "job_titles"},
		},
		{
			name: "schema qualified table",
			cfg:  SQLConfig{Host: "db", User: "app", Name: "jobs", Table: "hr.job_titles"},
		},
		{
			name:    "missing fields",
			cfg:     SQLConfig{Table: "job_titles"},
			wantErr: "missing: host, user, name",
		},
		{
			name:    "injection attempt",
			cfg:     SQLConfig{Host: "db", User: "app", Name: "jobs", Table: "job_titles; DROP TABLE users"},
			wantErr: "invalid table name",
		},
		{
			name:    "bad column",
			cfg:     SQLConfig{Host: "db", User: "app", Name: "jobs", Table: "t", TitleColumn: "name`"},
			wantErr: "invalid title column name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.withDefaults().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLConfigDefaults(t *testing.T) {
	cfg := SQLConfig{}.withDefaults()
	if cfg.Driver != DriverMySQL || cfg.Port != 3306 {
		t.Fatalf("unexpected mysql defaults: %+v", cfg)
	}
	if cfg.IDColumn != "id" || cfg.TitleColumn != "name" {
		t.Fatalf("unexpected column defaults: %+v", cfg)
	}

	pg := SQLConfig{Driver: "Postgres"}.withDefaults()
	if pg.Driver != DriverPostgres || pg.Port != 5432 {
		t.Fatalf("unexpected postgres defaults: %+v", pg)
	}

	if _, err := (SQLConfig{Driver: "oracle"}).withDefaults().dialector(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		password string
	}{
		{name: "empty password", password: ""},
		{name: "password with space", password: "pa ss"},
		{name: "password with quotes", password: `it's "quoted"`},
		{name: "password with url characters", password: "p@ss/w:rd?#"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := SQLConfig{Driver: DriverPostgres, Host: "db", User: "app", Password: tc.password, Name: "careers"}.withDefaults()

			parsed, err := pgconn.ParseConfig(cfg.postgresDSN())
			if err != nil {
				t.Fatalf("parsing dsn: %v", err)
			}

			if parsed.Database != "careers" || parsed.User != "app" || parsed.Password != tc.password {
				t.Fatalf("unexpected parsed config: database=%q user=%q password=%q", parsed.Database, parsed.User, parsed.Password)
			}

			if parsed.Host != "db" || parsed.Port != 5432 {
				t.Fatalf("unexpected address %s:%d", parsed.Host, parsed.Port)
			}
		})
	}
}

func TestTitlesContains(t *testing.T) {
	titles := Titles{{ID: 1, Title: "Backend Engineer"}, {ID: 2, Title: "Graphic Designer"}}

	if !titles.Contains(Title{ID: 1, Title: "Backend Engineer"}) {
		t.Fatal("expected exact match to be found")
	}
	if titles.Contains(Title{ID: 1, Title: "Frontend Engineer"}) {
		t.Fatal("expected title mismatch to be rejected")
	}
	if titles.Contains(Title{ID: 3, Title: "Backend Engineer"}) {
		t.Fatal("expected id mismatch to be rejected")
	}
}

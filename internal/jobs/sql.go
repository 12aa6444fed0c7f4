package jobs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	defaultIDColumn    = "id"
	defaultTitleColumn = "name"
	defaultMySQLPort   = 3306
	defaultPGPort      = 5432
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLConfig describes where the job title table lives.
// Table and column names come from operator configuration only.
type SQLConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	Table       string
	IDColumn    string
	TitleColumn string
	SSLMode     string
}

// SQLSource reads job titles from a relational table.
type SQLSource struct {
	db          *gorm.DB
	table       string
	idColumn    string
	titleColumn string
	logger      *zap.Logger
}

// Open connects to the configured database and returns a source over its job title table.
func Open(cfg SQLConfig, logger *zap.Logger) (*SQLSource, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database %q on %s:%d: %w", cfg.Driver, cfg.Name, cfg.Host, cfg.Port, err)
	}

	return NewSQLSource(db, cfg, logger)
}

// NewSQLSource wraps an already opened gorm connection.
func NewSQLSource(db *gorm.DB, cfg SQLConfig, logger *zap.Logger) (*SQLSource, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	cfg = cfg.withDefaults()
	if err := validateIdentifiers(cfg); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &SQLSource{
		db:          db,
		table:       cfg.Table,
		idColumn:    cfg.IDColumn,
		titleColumn: cfg.TitleColumn,
		logger:      logger,
	}, nil
}

// All reads the whole table. Rows with an empty title are skipped.
func (s *SQLSource) All(ctx context.Context) ([]Title, error) {
	var rows []map[string]any

	err := s.db.WithContext(ctx).
		Table(s.table).
		Select(s.idColumn, s.titleColumn).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query job titles from %s: %w", s.table, err)
	}

	titles := make([]Title, 0, len(rows))
	for i, row := range rows {
		title, err := s.decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", i, s.table, err)
		}

		if strings.TrimSpace(title.Title) == "" {
			s.logger.Debug("skipping job title without a name", zap.Int64("id", title.ID))
			continue
		}

		titles = append(titles, title)
	}

	s.logger.Debug("fetched job titles",
		zap.String("table", s.table),
		zap.Int("rows", len(rows)),
		zap.Int("titles", len(titles)),
	)

	return titles, nil
}

// Close releases the underlying connection pool.
func (s *SQLSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *SQLSource) decodeRow(row map[string]any) (Title, error) {
	id, ok := lookupColumn(row, s.idColumn)
	if !ok || id == nil {
		return Title{}, fmt.Errorf("column %q is missing or null", s.idColumn)
	}

	name, _ := lookupColumn(row, s.titleColumn)

	var title Title
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       bytesToString,
		WeaklyTypedInput: true,
		Result:           &title,
	})
	if err != nil {
		return Title{}, err
	}

	if err := decoder.Decode(map[string]any{"id": id, "title": name}); err != nil {
		return Title{}, err
	}

	title.Title = strings.TrimSpace(title.Title)

	return title, nil
}

// lookupColumn finds a column by its unqualified name, case-insensitively.
func lookupColumn(row map[string]any, column string) (any, bool) {
	if idx := strings.LastIndex(column, "."); idx != -1 {
		column = column[idx+1:]
	}

	if v, ok := row[column]; ok {
		return v, true
	}

	for key, v := range row {
		if strings.EqualFold(key, column) {
			return v, true
		}
	}

	return nil, false
}

func bytesToString(_ reflect.Type, _ reflect.Type, data any) (any, error) {
	if b, ok := data.([]byte); ok {
		return string(b), nil
	}

	return data, nil
}

// Validate checks that every required connection setting is present.
func (c SQLConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Table) == "" {
		missing = append(missing, "table")
	}

	if len(missing) > 0 {
		return fmt.Errorf("database configuration is incomplete, missing: %s", strings.Join(missing, ", "))
	}

	return validateIdentifiers(c)
}

func (c SQLConfig) withDefaults() SQLConfig {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}

	if c.Port <= 0 {
		c.Port = defaultMySQLPort
		if c.Driver == DriverPostgres {
			c.Port = defaultPGPort
		}
	}

	c.Table = strings.TrimSpace(c.Table)
	if c.IDColumn = strings.TrimSpace(c.IDColumn); c.IDColumn == "" {
		c.IDColumn = defaultIDColumn
	}
	if c.TitleColumn = strings.TrimSpace(c.TitleColumn); c.TitleColumn == "" {
		c.TitleColumn = defaultTitleColumn
	}
	if c.SSLMode = strings.TrimSpace(c.SSLMode); c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	return c
}

func (c SQLConfig) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		dsn := mysqldriver.NewConfig()
		dsn.User = c.User
		dsn.Passwd = c.Password
		dsn.Net = "tcp"
		dsn.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		dsn.DBName = c.Name
		dsn.ParseTime = true
		return mysql.Open(dsn.FormatDSN()), nil
	case DriverPostgres:
		return postgres.Open(c.postgresDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}

// postgresDSN renders a URL DSN so empty passwords and passwords with
// spaces or quotes survive parsing.
func (c SQLConfig) postgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}

	return u.String()
}

func validateIdentifiers(c SQLConfig) error {
	for _, ident := range []struct {
		kind  string
		value string
	}{
		{"table", c.Table},
		{"id column", c.IDColumn},
		{"title column", c.TitleColumn},
	} {
		if !identifierPattern.MatchString(ident.value) {
			return fmt.Errorf("invalid %s name %q", ident.kind, ident.value)
		}
	}

	return nil
}

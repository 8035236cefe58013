package config

import (
	"testing"

	"github.com/go-sql-driver/mysql"
)

var databaseEnv = []string{"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DATABASE_DSN"}

func TestGetDatabaseDSN(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "all parts set",
			env: map[string]string{
				"DB_USER": "testuser", "DB_PASSWORD": "testpass", "DB_HOST": "testhost",
				"DB_PORT": "3307", "DB_NAME": "testdb",
			},
			want: "testuser:testpass@tcp(testhost:3307)/testdb?parseTime=true",
		},
		{
			name: "parts win over DATABASE_DSN",
			env: map[string]string{
				"DB_USER": "u", "DB_PASSWORD": "p", "DB_HOST": "db", "DB_PORT": "3306", "DB_NAME": "hydro",
				"DATABASE_DSN": "custom:dsn@tcp(custom:3306)/customdb?parseTime=true",
			},
			want: "u:p@tcp(db:3306)/hydro?parseTime=true",
		},
		{
			name: "DATABASE_DSN",
			env:  map[string]string{"DATABASE_DSN": "custom:dsn@tcp(custom:3306)/customdb?parseTime=true"},
			want: "custom:dsn@tcp(custom:3306)/customdb?parseTime=true",
		},
		{
			name: "partial parts fall back to default",
			env:  map[string]string{"DB_USER": "testuser", "DB_PASSWORD": "testpass"},
			want: defaultDSN,
		},
		{
			name: "nothing set",
			want: defaultDSN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range databaseEnv {
				t.Setenv(key, tt.env[key])
			}

			if got := GetDatabaseDSN(); got != tt.want {
				t.Errorf("GetDatabaseDSN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDatabaseDSN_ParsesWithDriver(t *testing.T) {
	for _, key := range databaseEnv {
		t.Setenv(key, "")
	}
	t.Setenv("DB_USER", "station_reader")
	t.Setenv("DB_PASSWORD", "p@ss:word")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "hydrodash")

	cfg, err := mysql.ParseDSN(GetDatabaseDSN())
	if err != nil {
		t.Fatalf("mysql.ParseDSN() error = %v", err)
	}
	if cfg.Passwd != "p@ss:word" || cfg.Addr != "db.internal:3306" || !cfg.ParseTime {
		t.Errorf("parsed DSN = user %q passwd %q addr %q parseTime %v", cfg.User, cfg.Passwd, cfg.Addr, cfg.ParseTime)
	}

	if _, err := mysql.ParseDSN(defaultDSN); err != nil {
		t.Errorf("default DSN does not parse: %v", err)
	}
}

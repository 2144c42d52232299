package module

import (
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/quota"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/ratelimit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/config"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/service"
)

// KV drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPG     = "pgsql"
)

// Options holds configuration settings for the importer module
type Options struct {
	RequestsPerWindow int
	Window            time.Duration
	PageDelay         time.Duration
	RetryDelay        time.Duration
	QuotaMax          int
	QuotaWindow       time.Duration
	ProgressBuffer    int
	FlushTimeout      time.Duration

	SalesNav salesnav.Options
	CRM      crm.Options

	// Driver picks the kv backend: memory, sqlite or pgsql
	Driver string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ic := cfg.Prefix("CORE_IMPORT_")
	sn := cfg.Prefix("SALESNAV_")
	cc := cfg.Prefix("CRM_")
	kv := cfg.Prefix("SERVICE_KV_")
	return Options{
		RequestsPerWindow: ic.MayInt("REQUESTS_PER_WINDOW", ratelimit.DefaultMaxRequests),
		Window:            ic.MayDuration("WINDOW", ratelimit.DefaultWindow),
		PageDelay:         ic.MayDuration("PAGE_DELAY", service.DefaultPageDelay),
		RetryDelay:        ic.MayDuration("RETRY_DELAY", service.DefaultRetryDelay),
		QuotaMax:          ic.MayInt("QUOTA_MAX", quota.DefaultMax),
		QuotaWindow:       ic.MayDuration("QUOTA_WINDOW", quota.DefaultWindow),
		ProgressBuffer:    ic.MayInt("PROGRESS_BUFFER", 0),
		FlushTimeout:      ic.MayDuration("FLUSH_TIMEOUT", 5*time.Second),

		SalesNav: salesnav.Options{
			BaseURL:   baseURL(sn, salesnav.DefaultBaseURL),
			UserAgent: sn.MayString("USER_AGENT", ""),
			Timeout:   sn.MayDuration("TIMEOUT", 30*time.Second),
			Identity:  sn.MayString("IDENTITY", ""),
		},
		CRM: crm.Options{
			BaseURL: baseURL(cc, crm.DefaultBaseURL),
			Timeout: cc.MayDuration("TIMEOUT", 30*time.Second),
		},

		Driver: kv.MayEnum("DRIVER", DriverMemory, DriverMemory, DriverSQLite, DriverPG),
	}
}

// StoreConfig opens only the backend the kv driver needs
// SERVICE_KV_SQLITE_DSN and SERVICE_PGSQL_* are read for the matching driver
func StoreConfig(cfg config.Conf, driver, app string) store.Config {
	sc := store.Config{AppName: app}
	switch driver {
	case DriverSQLite:
		sc.SQLite = store.SQLiteConfig{
			Enabled: true,
			DSN:     cfg.Prefix("SERVICE_KV_").MayString("SQLITE_DSN", "salesnav.db"),
		}
	case DriverPG:
		pg := cfg.Prefix("SERVICE_PGSQL_")
		sc.PG = store.PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		}
	}
	return sc
}

// baseURL reads BASE_URL, panicking when it is set but not absolute
func baseURL(c config.Conf, def string) string {
	if !c.Has("BASE_URL") {
		return def
	}
	return c.MustURL("BASE_URL").String()
}

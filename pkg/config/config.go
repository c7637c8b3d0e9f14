package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config regroupe la configuration de l'application (lecture via Viper depuis l'environnement
// et, en option, depuis un fichier .env / config.env).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Credit    CreditConfig
	Pricing   PricingConfig
	Analytics AnalyticsConfig
}

// AppConfig configuration générale.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Timezone string // fuseau utilisé pour découper les tendances par jour calendaire
}

// Location renvoie le fuseau configuré; UTC si vide ou inconnu.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DBConfig configuration PostgreSQL.
// Si DatabaseURL n'est pas vide, elle est utilisée telle quelle (ex. DATABASE_URL du BaaS).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
}

// ConnectionString renvoie le DSN à utiliser: DATABASE_URL si défini, sinon DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN construit la chaîne de connexion PostgreSQL (mot de passe encodé).
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig vérification des jetons émis par le fournisseur d'authentification.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuration du serveur HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renvoie l'adresse d'écoute (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig verrous distribués et canal de notifications de changement.
// Address vide = Redis désactivé (verrou local en mémoire, pas de notifications).
type RedisConfig struct {
	Address        string
	Password       string
	DB             int
	ChangesChannel string
}

// Enabled indique si Redis est configuré.
func (c RedisConfig) Enabled() bool { return c.Address != "" }

// CreditConfig seuils d'alerte et verrouillage du carnet de crédit.
type CreditConfig struct {
	WarningAfterDays  int // alerte "warning" si jours depuis paiement > WarningAfterDays
	CriticalAfterDays int // alerte "critical" si jours depuis paiement > CriticalAfterDays
	LockTTL           time.Duration
}

// PricingConfig bandes de classification des écarts (en %).
type PricingConfig struct {
	BandLowPct  float64
	BandHighPct float64
}

// AnalyticsConfig recalcul périodique des instantanés d'analyse de prix.
type AnalyticsConfig struct {
	RefreshInterval time.Duration
	Period          string        // daily, weekly, monthly
	LockTTL         time.Duration // verrou par (produit, zone) pendant un recalcul
}

// Load lit la configuration depuis les variables d'environnement (et optionnellement un fichier).
// Les variables d'environnement sont prioritaires. Noms attendus: APP_ENV, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // absent = ignoré

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ravito-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Timezone: getString(v, "APP_TIMEZONE", "UTC"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ravito"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Address:        getString(v, "REDIS_ADDRESS", ""),
			Password:       getString(v, "REDIS_PASSWORD", ""),
			DB:             getInt(v, "REDIS_DB", 0),
			ChangesChannel: getString(v, "REDIS_CHANGES_CHANNEL", "ravito:changes"),
		},
		Credit: CreditConfig{
			WarningAfterDays:  getInt(v, "CREDIT_WARNING_AFTER_DAYS", 14),
			CriticalAfterDays: getInt(v, "CREDIT_CRITICAL_AFTER_DAYS", 30),
			LockTTL:           time.Duration(getInt(v, "CREDIT_LOCK_TTL_SECONDS", 10)) * time.Second,
		},
		Pricing: PricingConfig{
			BandLowPct:  getFloat(v, "PRICING_BAND_LOW_PCT", -5),
			BandHighPct: getFloat(v, "PRICING_BAND_HIGH_PCT", 5),
		},
		Analytics: AnalyticsConfig{
			RefreshInterval: time.Duration(getInt(v, "ANALYTICS_REFRESH_MINUTES", 60)) * time.Minute,
			Period:          getString(v, "ANALYTICS_PERIOD", "monthly"),
			LockTTL:         time.Duration(getInt(v, "ANALYTICS_LOCK_TTL_SECONDS", 30)) * time.Second,
		},
	}

	if cfg.Credit.WarningAfterDays >= cfg.Credit.CriticalAfterDays {
		return nil, fmt.Errorf("config: CREDIT_WARNING_AFTER_DAYS (%d) doit être inférieur à CREDIT_CRITICAL_AFTER_DAYS (%d)",
			cfg.Credit.WarningAfterDays, cfg.Credit.CriticalAfterDays)
	}
	if cfg.Pricing.BandLowPct > cfg.Pricing.BandHighPct {
		return nil, fmt.Errorf("config: PRICING_BAND_LOW_PCT doit être inférieur ou égal à PRICING_BAND_HIGH_PCT")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

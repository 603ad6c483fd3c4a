package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
)

// Config contém todas as configurações da aplicação
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Members  MembersConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	I18n     I18nConfig
}

type ServerConfig struct {
	Port    string
	Host    string
	BaseURL string // URL base da API para construir URIs RFC 7807
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	MaxIdleTime int
	AutoMigrate bool
	Debug       bool
}

type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

type JWTConfig struct {
	Secret      string
	AdminCookie string
}

// MembersConfig agrupa as opções da área de membros
type MembersConfig struct {
	AdminPath     string
	AdminRoles    []string
	Roles         entities.Roles
	DashboardURL  string
	DBCheckURL    string
	SessionCookie string
	Templates     TemplatesConfig
	Actions       FormActions
}

// TemplatesConfig mapeia cada widget para o template padrão
type TemplatesConfig struct {
	Login     string
	Logout    string
	Associate string
	Edit      string
	Register  string
}

// FormActions são as URLs para onde os formulários dos widgets enviam
type FormActions struct {
	Login     string
	Logout    string
	Associate string
	Edit      string
	Register  string
}

type LoggingConfig struct {
	Level string
}

type CORSConfig struct {
	AllowedOrigins string
}

type I18nConfig struct {
	LocalesDir      string
	DefaultLanguage string
}

// Load carrega as configurações do ambiente, usando o arquivo .env quando existir
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

// FromViper monta a Config a partir de uma instância viper já populada
func FromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Env: v.GetString("ENV"),
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			Host:    v.GetString("HOST"),
			BaseURL: v.GetString("API_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSL_MODE"),
			MaxConns:    v.GetInt("DB_MAX_CONNS"),
			MinConns:    v.GetInt("DB_MIN_CONNS"),
			MaxIdleTime: v.GetInt("DB_MAX_IDLE_TIME"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
			Debug:       v.GetBool("DB_DEBUG"),
		},
		Redis: RedisConfig{
			URL:        v.GetString("REDIS_URL"),
			SessionTTL: v.GetDuration("SESSION_TTL"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			AdminCookie: v.GetString("ADMIN_TOKEN_COOKIE"),
		},
		Members: MembersConfig{
			AdminPath:     strings.TrimRight(v.GetString("MEMBERS_ADMIN_PATH"), "/"),
			AdminRoles:    splitList(v.GetString("MEMBERS_ADMIN_ROLES")),
			Roles:         entities.ParseRoles(v.GetString("MEMBERS_ROLES")),
			DashboardURL:  v.GetString("MEMBERS_DASHBOARD_URL"),
			DBCheckURL:    v.GetString("MEMBERS_DBCHECK_URL"),
			SessionCookie: v.GetString("MEMBERS_SESSION_COOKIE"),
			Templates: TemplatesConfig{
				Login:     v.GetString("MEMBERS_TEMPLATE_LOGIN"),
				Logout:    v.GetString("MEMBERS_TEMPLATE_LOGOUT"),
				Associate: v.GetString("MEMBERS_TEMPLATE_ASSOCIATE"),
				Edit:      v.GetString("MEMBERS_TEMPLATE_PROFILE_EDIT"),
				Register:  v.GetString("MEMBERS_TEMPLATE_PROFILE_REGISTER"),
			},
			Actions: FormActions{
				Login:     v.GetString("MEMBERS_ACTION_LOGIN"),
				Logout:    v.GetString("MEMBERS_ACTION_LOGOUT"),
				Associate: v.GetString("MEMBERS_ACTION_ASSOCIATE"),
				Edit:      v.GetString("MEMBERS_ACTION_PROFILE_EDIT"),
				Register:  v.GetString("MEMBERS_ACTION_PROFILE_REGISTER"),
			},
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		},
		I18n: I18nConfig{
			LocalesDir:      v.GetString("LOCALES_DIR"),
			DefaultLanguage: v.GetString("DEFAULT_LANGUAGE"),
		},
	}

	if config.Members.AdminPath == "" {
		config.Members.AdminPath = "/admin/members"
	}
	if len(config.Members.AdminRoles) == 0 {
		return nil, errors.New("MEMBERS_ADMIN_ROLES must list at least one role")
	}
	if config.Env == "production" && config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "members")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_IDLE_TIME", 300)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("ADMIN_TOKEN_COOKIE", "admin_token")

	v.SetDefault("MEMBERS_ADMIN_PATH", "/admin/members")
	v.SetDefault("MEMBERS_ADMIN_ROLES", "root,admin")
	v.SetDefault("MEMBERS_ROLES", "participant:Participant")
	v.SetDefault("MEMBERS_DASHBOARD_URL", "/dashboard")
	v.SetDefault("MEMBERS_DBCHECK_URL", "/dbcheck")
	v.SetDefault("MEMBERS_SESSION_COOKIE", "members_session")

	v.SetDefault("MEMBERS_TEMPLATE_LOGIN", "authentication/login.html")
	v.SetDefault("MEMBERS_TEMPLATE_LOGOUT", "authentication/logout.html")
	v.SetDefault("MEMBERS_TEMPLATE_ASSOCIATE", "authentication/associate.html")
	v.SetDefault("MEMBERS_TEMPLATE_PROFILE_EDIT", "profile/edit.html")
	v.SetDefault("MEMBERS_TEMPLATE_PROFILE_REGISTER", "profile/register.html")

	v.SetDefault("MEMBERS_ACTION_LOGIN", "/authentication/login")
	v.SetDefault("MEMBERS_ACTION_LOGOUT", "/authentication/logout")
	v.SetDefault("MEMBERS_ACTION_ASSOCIATE", "/authentication/associate")
	v.SetDefault("MEMBERS_ACTION_PROFILE_EDIT", "/membership/profile/edit")
	v.SetDefault("MEMBERS_ACTION_PROFILE_REGISTER", "/membership/profile/register")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	// vazio usa as traduções embutidas
	v.SetDefault("LOCALES_DIR", "")
	v.SetDefault("DEFAULT_LANGUAGE", "en")
}

// splitList separa listas "a, b,c" ignorando itens vazios
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DSN retorna a connection string do PostgreSQL
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

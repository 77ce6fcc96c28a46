package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection settings for the artifact registry.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// CloudinaryConfig holds credentials and upload defaults for the Cloudinary
// provider driver. No value here is ever hardcoded or logged.
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	Folder       string
	ResourceType string // "raw" for documents, "image" for covers
}

// S3Config holds settings for the S3-compatible provider driver (MinIO, AWS S3).
type S3Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PublicBase string // browser-accessible base URL for uploaded objects
}

// ProviderConfig selects and configures the remote store driver.
type ProviderConfig struct {
	Driver     string // "cloudinary" or "s3"
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// StagingConfig holds settings for local temporary staging of uploads.
type StagingConfig struct {
	Dir string
}

// FilterConfig names the media-type allow-list applied before staging.
// AllowedTypes is either a preset name ("pdf", "images") or a comma-separated
// list of MIME types.
type FilterConfig struct {
	AllowedTypes string
}

// ResolverConfig holds the endpoints the link resolver derives download URLs
// against. ConsoleHost/TenantID shape the provider console download template;
// ShareEndpoint is the export endpoint for caller-supplied sharing links.
type ResolverConfig struct {
	ConsoleHost   string
	TenantID      string
	ShareEndpoint string
}

// SMTPConfig holds mail delivery settings for the optional notifier.
// An empty Host disables notification delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	CORSOrigins string
	Database    DatabaseConfig
	Provider    ProviderConfig
	Staging     StagingConfig
	Filter      FilterConfig
	Resolver    ResolverConfig
	SMTP        SMTPConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Provider: ProviderConfig{
			Driver: getEnv("PROVIDER_DRIVER", "cloudinary"),
			Cloudinary: CloudinaryConfig{
				CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
				APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
				APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
				Folder:       getEnv("CLOUDINARY_FOLDER", "pdfs"),
				ResourceType: getEnv("CLOUDINARY_RESOURCE_TYPE", "raw"),
			},
			S3: S3Config{
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
				Bucket:     getEnv("S3_BUCKET", ""),
				UseSSL:     getEnvBool("S3_USE_SSL", false),
				PublicBase: getEnv("S3_PUBLIC_BASE", ""),
			},
		},
		Staging: StagingConfig{
			Dir: getEnv("STAGING_DIR", "uploads"),
		},
		Filter: FilterConfig{
			AllowedTypes: getEnv("FILTER_ALLOWED_TYPES", "pdf"),
		},
		Resolver: ResolverConfig{
			ConsoleHost:   getEnv("RESOLVER_CONSOLE_HOST", "console.cloudinary.com"),
			TenantID:      getEnv("RESOLVER_TENANT_ID", ""),
			ShareEndpoint: getEnv("RESOLVER_SHARE_ENDPOINT", "https://drive.google.com/uc"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

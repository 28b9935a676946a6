package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage buckets (folders of STORAGE_BUCKET) used by the upload endpoints.
const (
	BucketAvatars    = "avatars"
	BucketProducts   = "products"
	BucketChatImages = "chat-images"
)

// defaultAdminEmails is the built-in admin allow-list, used when ADMIN_EMAILS is unset.
var defaultAdminEmails = []string{
	"admin@comoresmarket.com",
	"contact@comoresmarket.com",
}

type Config struct {
	ServerPort    string
	Environment   string
	PublicBaseURL string

	FirebaseProject            string
	FirebaseApiKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	DataBackend string // firestore, mysql or sqlite
	DatabaseDSN string

	ResendApiKey string
	MailFrom     string

	AdminEmails []string
	AuthSecret  string

	CORSAllowOrigins []string

	Quotas Quotas

	ProPriceKMF       int64
	ProWhatsappNumber string
}

// Quotas bound what a seller may publish. Zero means unlimited.
type Quotas struct {
	FreeMaxListings int
	FreeMaxPhotos   int
	ProMaxListings  int
	ProMaxPhotos    int
}

// MaxListings returns the active listing quota for a seller tier.
func (q Quotas) MaxListings(isPro bool) int {
	if isPro {
		return q.ProMaxListings
	}
	return q.FreeMaxListings
}

// MaxPhotos returns the per-listing photo quota for a seller tier.
func (q Quotas) MaxPhotos(isPro bool) int {
	if isPro {
		return q.ProMaxPhotos
	}
	return q.FreeMaxPhotos
}

func Load() (*Config, error) {
	godotenv.Load()

	publicBaseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "https://comoresmarket.com"), "/")

	config := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		PublicBaseURL: publicBaseURL,

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:             getEnv("FIREBASE_API_KEY", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", "firestore")),
		DatabaseDSN: getEnv("DATABASE_DSN", "comoresmarket.db"),

		ResendApiKey: getEnv("RESEND_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "Comores Market <notifications@comoresmarket.com>"),

		AdminEmails: getEnvAsList("ADMIN_EMAILS", defaultAdminEmails),
		AuthSecret:  getEnv("AUTH_SECRET", "change-me"),

		// Also gates websocket upgrades; "*" opens both to any site.
		CORSAllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{publicBaseURL}),

		Quotas: Quotas{
			FreeMaxListings: getEnvAsInt("FREE_MAX_LISTINGS", 10),
			FreeMaxPhotos:   getEnvAsInt("FREE_MAX_PHOTOS", 5),
			ProMaxListings:  getEnvAsInt("PRO_MAX_LISTINGS", 100),
			ProMaxPhotos:    getEnvAsInt("PRO_MAX_PHOTOS", 10),
		},

		ProPriceKMF:       getEnvAsInt64("PRO_PRICE_KMF", 5000),
		ProWhatsappNumber: getEnv("PRO_WHATSAPP_NUMBER", "+2693000000"),
	}

	return config, nil
}

// IsAdminEmail reports whether email belongs to the admin allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, allowed := range c.AdminEmails {
		if strings.ToLower(allowed) == email {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Package config provides application configuration management from environment variables.
//
// # Configuration Structure
//
// Server settings:
//
//	PROSHOP_HOST="0.0.0.0"
//	PROSHOP_PORT="8080"
//	PROSHOP_READ_TIMEOUT="15s"
//	PROSHOP_WRITE_TIMEOUT="15s"
//	PROSHOP_SHUTDOWN_TIMEOUT="30s"
//
// Auth settings:
//
//	PROSHOP_JWT_SECRET="..."   # required; startup fails without it
//	PROSHOP_DEV_MODE="false"   # true drops the Secure cookie attribute
//
// Database settings:
//
//	PROSHOP_POSTGRES_URL="postgres://localhost/proshop"
//	PROSHOP_POSTGRES_MAX_CONNS="20"
//
// Redis settings (optional, enables distributed login rate limiting):
//
//	PROSHOP_REDIS_URL="localhost:6379"
//	PROSHOP_REDIS_PASSWORD=""
//	PROSHOP_REDIS_DB="0"
//
// Uploads:
//
//	PROSHOP_UPLOAD_DIR="/var/proshop/uploads"
//
// Observability settings:
//
//	PROSHOP_LOG_LEVEL="info"  # debug, info, warn, error
//	PROSHOP_METRICS_ENABLED="true"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config

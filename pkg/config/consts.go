package config

// EnvPrefix is the envconfig prefix for all LoadBridge environment variables.
const EnvPrefix = "LOADBRIDGE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "LOADBRIDGE_APP_ENV"
	EnvPort                   = "LOADBRIDGE_APP_PORT"
	EnvDBDSN                  = "LOADBRIDGE_DB_DSN"
	EnvDBHost                 = "LOADBRIDGE_DB_HOST"
	EnvDBUser                 = "LOADBRIDGE_DB_USER"
	EnvDBName                 = "LOADBRIDGE_DB_NAME"
	EnvRedisURL               = "LOADBRIDGE_REDIS_URL"
	EnvJWTSecret              = "LOADBRIDGE_JWT_SECRET"
	EnvJWTIssuer              = "LOADBRIDGE_JWT_ISSUER"
	EnvJWTExpMins             = "LOADBRIDGE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LOADBRIDGE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "LOADBRIDGE_GCP_PROJECT_ID"
	EnvPubSubDealsTopic       = "LOADBRIDGE_PUBSUB_DEALS_TOPIC"
	EnvPubSubDealsSub         = "LOADBRIDGE_PUBSUB_DEALS_SUBSCRIPTION"
	EnvPubSubDeliveriesTopic  = "LOADBRIDGE_PUBSUB_DELIVERIES_TOPIC"
	EnvPubSubDeliveriesSub    = "LOADBRIDGE_PUBSUB_DELIVERIES_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

// EnvPrefix is the envconfig prefix applied to every variable.
const EnvPrefix = "pressroute"

// Known application environments.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags.
const (
	EnvAppEnv                 = "PRESSROUTE_APP_ENV"
	EnvPort                   = "PRESSROUTE_APP_PORT"
	EnvDBDSN                  = "PRESSROUTE_DB_DSN"
	EnvDBHost                 = "PRESSROUTE_DB_HOST"
	EnvDBUser                 = "PRESSROUTE_DB_USER"
	EnvDBName                 = "PRESSROUTE_DB_NAME"
	EnvRedisURL               = "PRESSROUTE_REDIS_URL"
	EnvJWTSecret              = "PRESSROUTE_JWT_SECRET"
	EnvJWTIssuer              = "PRESSROUTE_JWT_ISSUER"
	EnvJWTExpMins             = "PRESSROUTE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PRESSROUTE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "PRESSROUTE_GCP_PROJECT_ID"
	EnvPubSubEventsTopic      = "PRESSROUTE_PUBSUB_EVENTS_TOPIC"
	EnvPubSubEventsSub        = "PRESSROUTE_PUBSUB_EVENTS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

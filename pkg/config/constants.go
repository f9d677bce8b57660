package config

// EnvPrefix is the envconfig prefix; every variable also carries an explicit
// envconfig tag, so the prefix only matters for unannotated fields.
const EnvPrefix = "parkpass"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and the tests/tooling.
const (
	EnvAppEnv   = "PARKPASS_APP_ENV"
	EnvDBDSN    = "PARKPASS_DB_DSN"
	EnvDBHost   = "PARKPASS_DB_HOST"
	EnvDBUser   = "PARKPASS_DB_USER"
	EnvDBName   = "PARKPASS_DB_NAME"
	EnvRedisURL = "PARKPASS_REDIS_URL"

	EnvSweepGraceMinutes = "PARKPASS_SWEEP_GRACE_MINUTES"
	EnvSweepInterval     = "PARKPASS_SWEEP_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

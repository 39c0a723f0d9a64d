package config

const (
	// DefaultTestPrefix is the name prefix of test callables
	DefaultTestPrefix = "test_"
	// DefaultModulePrefix is the file name prefix of test modules
	DefaultModulePrefix = "test_"
	// ModuleExt is the file extension of test modules
	ModuleExt = ".lua"
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = ".clinic.yaml"
	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"
	// MaxVerbosity is the most detailed report level
	MaxVerbosity = 2
)

// Environment variables consulted by ApplyEnv
const (
	EnvSearchPath     = "CLINIC_PATH"
	EnvTestPrefix     = "CLINIC_TEST_PREFIX"
	EnvModulePrefix   = "CLINIC_MODULE_PREFIX"
	EnvTraceback      = "CLINIC_TRACEBACK"
	EnvFollowSymlinks = "CLINIC_FOLLOW_SYMLINKS"
)

package config

// LogConfig locates the application log files shown in the admin log viewer.
type LogConfig struct {
	Dir       string
	TailBytes int64 // how much of each file the viewer returns
	Stdout    bool  // mirror log lines to stdout
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Dir:       envStr("LOG_DIR", "logs"),
		TailBytes: int64(envInt("LOG_TAIL_BYTES", 100*1024)),
		Stdout:    envBool("LOG_STDOUT", true),
	}
}

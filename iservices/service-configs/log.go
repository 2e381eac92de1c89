package service_configs

type LogConfig struct {
	Level string

	// directory under the node instance dir
	Dir string

	// rotated log file retention
	LifeSpanInSeconds uint64
}

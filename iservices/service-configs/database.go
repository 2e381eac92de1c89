package service_configs

type DatabaseConfig struct {
	// keep the whole state in memory, nothing written to disk
	InMemory bool

	// directory under the node instance dir, ignored when InMemory
	Dir string
}

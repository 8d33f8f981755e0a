package storage

import "go.uber.org/zap"

// Open picks the backend the configuration asks for
func Open(useInMemory bool, config DatabaseConfig, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if useInMemory {
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	}
	logger.Info("Using PostgreSQL storage")
	return NewPostgresStorage(config, logger)
}

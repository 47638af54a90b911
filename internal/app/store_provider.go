package app

import (
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/competence-ledger/internal/data/db"
	"github.com/yungbote/competence-ledger/internal/data/kv"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type StoreMode string

const (
	StoreModeMemory   StoreMode = "memory"
	StoreModeFile     StoreMode = "file"
	StoreModeSQLite   StoreMode = "sqlite"
	StoreModePostgres StoreMode = "postgres"
	StoreModeRedis    StoreMode = "redis"
)

func IsSupportedStoreMode(mode StoreMode) bool {
	switch mode {
	case StoreModeMemory, StoreModeFile, StoreModeSQLite, StoreModePostgres, StoreModeRedis:
		return true
	default:
		return false
	}
}

var (
	newRedisStore = kv.NewRedisStore
	openDB        = db.Open
)

type StoreProviderBootstrapErrorCode string

const (
	StoreProviderBootstrapErrorInvalidMode    StoreProviderBootstrapErrorCode = "invalid_mode"
	StoreProviderBootstrapErrorMissingSetting StoreProviderBootstrapErrorCode = "missing_setting"
	StoreProviderBootstrapErrorConnectFailed  StoreProviderBootstrapErrorCode = "connect_failed"
)

type StoreProviderBootstrapError struct {
	Code  StoreProviderBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StoreProviderBootstrapError) Error() string {
	if e == nil {
		return "ledger store bootstrap failed"
	}
	return fmt.Sprintf("ledger store bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StoreProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// StoreHandle is an opened store plus whatever must be closed with it.
type StoreHandle struct {
	Store kv.Store
	Mode  StoreMode
	// Redis is set when the store itself is redis-backed.
	Redis *goredis.Client
	db    *db.Service
}

func (h *StoreHandle) Close() error {
	if h == nil {
		return nil
	}
	var errs []error
	if h.Store != nil {
		errs = append(errs, h.Store.Close())
	}
	if h.db != nil {
		errs = append(errs, h.db.Close())
	}
	return errors.Join(errs...)
}

// OpenStore opens the key-value store selected by LEDGER_STORE_MODE.
func OpenStore(log *logger.Logger, cfg Config) (*StoreHandle, error) {
	mode := StoreMode(strings.ToLower(strings.TrimSpace(cfg.StoreMode)))
	if mode == "" {
		mode = StoreModeFile
	}
	if !IsSupportedStoreMode(mode) {
		err := &StoreProviderBootstrapError{
			Code:  StoreProviderBootstrapErrorInvalidMode,
			Mode:  string(mode),
			Cause: fmt.Errorf("unsupported ledger store mode %q", mode),
		}
		log.Error("Ledger store selection failed", "mode", mode, "error_code", err.Code, "error", err)
		return nil, err
	}
	log.Info("Selecting ledger store", "mode", mode, "key", cfg.StoreKey)

	h, err := openStore(log, mode, cfg)
	if err != nil {
		classified := classifyStoreBootstrapError(mode, err)
		log.Error("Ledger store bootstrap failed", "mode", mode, "error_code", storeBootstrapErrorCode(classified), "error", classified)
		return nil, classified
	}
	return h, nil
}

var errMissingSetting = errors.New("missing setting")

func openStore(log *logger.Logger, mode StoreMode, cfg Config) (*StoreHandle, error) {
	switch mode {
	case StoreModeMemory:
		return &StoreHandle{Store: kv.NewMemoryStore(), Mode: mode}, nil
	case StoreModeFile:
		if strings.TrimSpace(cfg.FileDir) == "" {
			return nil, fmt.Errorf("%w: LEDGER_FILE_DIR", errMissingSetting)
		}
		s, err := kv.NewFileStore(cfg.FileDir, log)
		if err != nil {
			return nil, err
		}
		return &StoreHandle{Store: s, Mode: mode}, nil
	case StoreModeSQLite, StoreModePostgres:
		dbCfg := db.Config{
			Dialect:          db.DialectSQLite,
			SQLitePath:       cfg.SQLitePath,
			PostgresHost:     cfg.PostgresHost,
			PostgresPort:     cfg.PostgresPort,
			PostgresUser:     cfg.PostgresUser,
			PostgresPassword: cfg.PostgresPass,
			PostgresName:     cfg.PostgresName,
		}
		if mode == StoreModePostgres {
			dbCfg.Dialect = db.DialectPostgres
			if strings.TrimSpace(cfg.PostgresHost) == "" {
				return nil, fmt.Errorf("%w: POSTGRES_HOST", errMissingSetting)
			}
		} else if strings.TrimSpace(cfg.SQLitePath) == "" {
			return nil, fmt.Errorf("%w: LEDGER_SQLITE_PATH", errMissingSetting)
		}
		svc, err := openDB(log, dbCfg)
		if err != nil {
			return nil, err
		}
		s, err := kv.NewGormStore(svc.DB(), log)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		return &StoreHandle{Store: s, Mode: mode, db: svc}, nil
	case StoreModeRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("%w: REDIS_ADDR", errMissingSetting)
		}
		s, err := newRedisStore(log, kvRedisConfig(cfg))
		if err != nil {
			return nil, err
		}
		return &StoreHandle{Store: s, Mode: mode, Redis: s.Client()}, nil
	}
	return nil, fmt.Errorf("unsupported ledger store mode %q", mode)
}

func classifyStoreBootstrapError(mode StoreMode, err error) error {
	var already *StoreProviderBootstrapError
	if errors.As(err, &already) {
		return err
	}
	code := StoreProviderBootstrapErrorConnectFailed
	if errors.Is(err, errMissingSetting) {
		code = StoreProviderBootstrapErrorMissingSetting
	}
	return &StoreProviderBootstrapError{Code: code, Mode: string(mode), Cause: err}
}

func storeBootstrapErrorCode(err error) StoreProviderBootstrapErrorCode {
	var bootstrapErr *StoreProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr != nil {
		return bootstrapErr.Code
	}
	return StoreProviderBootstrapErrorConnectFailed
}

func kvRedisConfig(cfg Config) kv.RedisConfig {
	return kv.RedisConfig{Addr: cfg.RedisAddr, KeyPrefix: cfg.RedisKeyPrefix}
}

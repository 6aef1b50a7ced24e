package signage

import (
	mediacmd "github.com/goliatone/go-signage/internal/commands/media"
	"github.com/goliatone/go-signage/internal/runtimeconfig"
)

var (
	ErrStorageDriverUnknown                = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired                  = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid                     = runtimeconfig.ErrCacheTTLInvalid
	ErrLibraryLocationRequired             = runtimeconfig.ErrLibraryLocationRequired
	ErrResizeThresholdInvalid              = runtimeconfig.ErrResizeThresholdInvalid
	ErrSchemaVersionInvalid                = runtimeconfig.ErrSchemaVersionInvalid
	ErrCommandsCronRequiresImageProcessing = runtimeconfig.ErrCommandsCronRequiresImageProcessing
	ErrCommandsCronExpressionRequired      = runtimeconfig.ErrCommandsCronExpressionRequired
	ErrLoggingProviderRequired             = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown              = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid                 = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid                = runtimeconfig.ErrLoggingFormatInvalid
)

var (
	ErrImageProcessingDisabled = mediacmd.ErrImageProcessingDisabled
	ErrTooManyImageFailures    = mediacmd.ErrTooManyFailures
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LibraryConfig  = runtimeconfig.LibraryConfig
	LayoutsConfig  = runtimeconfig.LayoutsConfig
	Features       = runtimeconfig.Features
	CommandsConfig = runtimeconfig.CommandsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// Package config loads mediasync's configuration from a YAML file and
// MEDIASYNC_-prefixed environment variables via github.com/spf13/viper,
// validates the result, and prepares the directories the rest of the
// process depends on. The loading style (banner, directory diagnostics,
// ensureDirectory/testWriteAccess helpers) follows the teacher's
// internal/startup; the shape of what's loaded follows SPEC_FULL's nested
// sources[] configuration, which a flat set of environment variables
// cannot represent.
package config

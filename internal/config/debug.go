package config

import "os"

func IsDebug() bool {
	return os.Getenv("DOCVAULT_DEBUG") == "1"
}

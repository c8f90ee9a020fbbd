package config

import "os"

func IsDebug() bool {
	return os.Getenv("COURTSIDE_DEBUG") == "1"
}

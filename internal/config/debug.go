package config

import "os"

func IsDebug() bool {
	return os.Getenv("CARELOOP_DEBUG") == "1"
}

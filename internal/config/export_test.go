package config

import "time"

func GetEnvAsBool(key string, defaultValue bool) bool {
	return getEnvAsBool(key, defaultValue)
}

func GetEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	return getEnvAsDuration(key, defaultValue)
}

func AllNonEmpty(keyValues map[string]string) error {
	return allNonEmpty(keyValues)
}

func AllNumbers(keyValues map[string]string) error {
	return allNumbers(keyValues)
}

func DatabaseFromURI(uri string) string {
	return databaseFromURI(uri)
}
